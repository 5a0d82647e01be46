package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/verisight-labs/verisight/internal/domain"
	"github.com/verisight-labs/verisight/internal/storage"
	"github.com/verisight-labs/verisight/internal/store"
	"go.uber.org/zap"
)

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrCaseNotFound     = errors.New("case not found")
	ErrHITLNotRequired  = errors.New("case does not require HITL review")
)

// Analyzer runs the full adjudication pipeline for one file.
type Analyzer interface {
	Analyze(ctx context.Context, fileBytes []byte, filename string, mediaKind domain.MediaKind) (*domain.AnalysisResult, error)
}

// FileStore persists the raw upload and returns its location.
type FileStore interface {
	Save(fileBytes []byte, filename string) (string, error)
}

// CaseDetail is a case with all of its persisted stage outputs.
type CaseDetail struct {
	Case     *domain.Case           `json:"case"`
	Opinions []domain.StoredOpinion `json:"opinions"`
	Result   *domain.StoredResult   `json:"result,omitempty"`
}

// VerificationService owns the verification flow: hash and persist the
// upload, run the orchestrator, store every stage's output, and expose the
// HITL escalation action.
type VerificationService struct {
	cases        domain.CaseStore
	opinions     domain.OpinionStore
	results      domain.ResultStore
	files        FileStore
	orchestrator Analyzer
	logger       *zap.Logger
}

func NewVerificationService(
	cases domain.CaseStore,
	opinions domain.OpinionStore,
	results domain.ResultStore,
	files FileStore,
	orchestrator Analyzer,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		cases:        cases,
		opinions:     opinions,
		results:      results,
		files:        files,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Submit runs a verification end to end and returns the completed case with
// the full analysis. Persistence failures after the analysis are logged and
// surfaced, but the analysis itself never hard-fails: a degraded pipeline
// still yields a verdict.
func (s *VerificationService) Submit(ctx context.Context, fileBytes []byte, filename, clientID string) (*domain.Case, *domain.AnalysisResult, error) {
	if len(fileBytes) == 0 {
		return nil, nil, ErrEmptyFile
	}

	mediaKind := domain.DetectMediaKind(filename)
	if mediaKind == domain.MediaUnknown {
		return nil, nil, ErrUnsupportedMedia
	}

	// Chain of custody: hash before anything else touches the bytes.
	fileHash := storage.ComputeSHA256(fileBytes)

	fileURL, err := s.files.Save(fileBytes, filename)
	if err != nil {
		return nil, nil, err
	}

	c := &domain.Case{
		ClientID:  clientID,
		Status:    domain.CaseStatusPending,
		MediaKind: mediaKind,
		FileURL:   fileURL,
		FileHash:  fileHash,
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, nil, err
	}

	analysis, err := s.orchestrator.Analyze(ctx, fileBytes, filename, mediaKind)
	if err != nil {
		return nil, nil, err
	}

	for _, op := range analysis.Opinions {
		if err := s.opinions.Create(ctx, c.ID, op); err != nil {
			s.logger.Error("failed to persist opinion record",
				zap.String("case_id", c.ID.String()),
				zap.String("source", string(op.SourceKind)),
				zap.Error(err))
		}
	}
	if err := s.results.Create(ctx, c.ID, analysis.CrossReference, analysis.Critique); err != nil {
		s.logger.Error("failed to persist analysis result",
			zap.String("case_id", c.ID.String()), zap.Error(err))
	}

	if err := s.cases.UpdateResult(ctx, c.ID, domain.CaseStatusCompleted,
		analysis.Verdict, analysis.Confidence, analysis.HITLRequired); err != nil {
		return nil, nil, err
	}

	c.Status = domain.CaseStatusCompleted
	c.Verdict = &analysis.Verdict
	c.Confidence = &analysis.Confidence
	c.HITLRequired = analysis.HITLRequired

	s.logger.Info("verification case completed",
		zap.String("case_id", c.ID.String()),
		zap.String("client_id", clientID),
		zap.String("verdict", string(analysis.Verdict)),
		zap.Bool("hitl_required", analysis.HITLRequired),
	)

	return c, analysis, nil
}

// GetCase loads a case with its persisted opinions and adjudication result.
func (s *VerificationService) GetCase(ctx context.Context, id uuid.UUID) (*CaseDetail, error) {
	c, err := s.cases.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}

	opinions, err := s.opinions.ListByCaseID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.results.GetByCaseID(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return &CaseDetail{Case: c, Opinions: opinions, Result: result}, nil
}

// RequestHITL marks a case as awaiting a human expert. Only valid for cases
// the pipeline flagged for escalation.
func (s *VerificationService) RequestHITL(ctx context.Context, id uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCaseNotFound
	}
	if err != nil {
		return err
	}
	if !c.HITLRequired {
		return ErrHITLNotRequired
	}
	return s.cases.UpdateStatus(ctx, id, domain.CaseStatusHITLPending)
}

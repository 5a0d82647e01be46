package orchestrator

import (
	"context"
	"math"

	"github.com/verisight-labs/verisight/internal/crossref"
	"github.com/verisight-labs/verisight/internal/domain"
	"github.com/verisight-labs/verisight/internal/redteam"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Final-verdict bounds.
const (
	MinAdjustedScore   = 0.05
	MaxAdjustedScore   = 0.99
	AuthenticThreshold = 0.75 // adjusted score required to keep an authentic verdict
)

// Orchestrator sequences the analysis stages: concurrent opinion providers,
// cross-reference aggregation, adversarial critique, then the final
// adjudicated verdict with the human-escalation flag.
type Orchestrator struct {
	forensic   domain.OpinionProvider
	physical   domain.OpinionProvider
	contextual domain.OpinionProvider
	aiGen      domain.OpinionProvider

	crossRef *crossref.Engine
	redTeam  *redteam.Engine
	logger   *zap.Logger
}

func New(
	forensic, physical, contextual, aiGen domain.OpinionProvider,
	crossRef *crossref.Engine,
	redTeam *redteam.Engine,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		forensic:   forensic,
		physical:   physical,
		contextual: contextual,
		aiGen:      aiGen,
		crossRef:   crossRef,
		redTeam:    redTeam,
		logger:     logger,
	}
}

// Analyze runs the full pipeline. Providers run concurrently; a provider
// that fails or panics is dropped from the opinion set and never aborts the
// run. Each stage consumes only the previous stage's published result.
func (o *Orchestrator) Analyze(ctx context.Context, fileBytes []byte, filename string, mediaKind domain.MediaKind) (*domain.AnalysisResult, error) {
	providers := o.selectProviders(mediaKind)

	results := make([]*domain.OpinionRecord, len(providers))
	var g errgroup.Group
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					o.logger.Warn("opinion provider panicked",
						zap.String("source", string(p.Kind())),
						zap.Any("panic", r))
				}
			}()
			rec, err := p.Analyze(ctx, fileBytes, filename)
			if err != nil {
				o.logger.Warn("opinion provider failed, dropping its opinion",
					zap.String("source", string(p.Kind())),
					zap.Error(err))
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	opinions := make([]domain.OpinionRecord, 0, len(results))
	for _, rec := range results {
		if rec != nil {
			opinions = append(opinions, *rec)
		}
	}

	cross := o.crossRef.Aggregate(opinions)
	critique := o.redTeam.Challenge(ctx, fileBytes, filename, opinions, cross)
	verdict, confidence, hitl := finalVerdict(cross, critique)

	o.logger.Info("analysis complete",
		zap.String("filename", filename),
		zap.String("media_kind", string(mediaKind)),
		zap.Int("opinions", len(opinions)),
		zap.String("preliminary_verdict", string(cross.PreliminaryVerdict)),
		zap.String("verdict", string(verdict)),
		zap.Float64("confidence", confidence),
		zap.Bool("hitl_required", hitl),
	)

	return &domain.AnalysisResult{
		Opinions:       opinions,
		CrossReference: cross,
		Critique:       critique,
		Verdict:        verdict,
		Confidence:     confidence,
		HITLRequired:   hitl,
	}, nil
}

// selectProviders picks the opinion sources for a media kind. The forensic
// analyzer always runs; vision-backed sources only where they can help.
func (o *Orchestrator) selectProviders(mediaKind domain.MediaKind) []domain.OpinionProvider {
	switch mediaKind {
	case domain.MediaImage:
		return []domain.OpinionProvider{o.forensic, o.physical, o.contextual, o.aiGen}
	case domain.MediaVideo:
		return []domain.OpinionProvider{o.forensic, o.physical, o.contextual}
	case domain.MediaAudio:
		return []domain.OpinionProvider{o.forensic}
	case domain.MediaDocument:
		return []domain.OpinionProvider{o.forensic, o.contextual}
	default:
		return []domain.OpinionProvider{o.forensic}
	}
}

// finalVerdict applies the critique to the preliminary call. Whenever the
// critique engine directly disputes an authentic or forged verdict, the
// verdict is forced to inconclusive. The rule order is deliberate: a forged
// verdict without a verdict challenge survives the critique stage.
func finalVerdict(cross domain.CrossReferenceResult, critique domain.CritiqueResult) (domain.Verdict, float64, bool) {
	adjusted := clamp(cross.CombinedScore+critique.ConfidenceAdjustment, MinAdjustedScore, MaxAdjustedScore)
	adjusted = math.Round(adjusted*1000) / 1000

	verdictChallenged := false
	for _, c := range critique.Challenges {
		if c.Kind == domain.ChallengeVerdict {
			verdictChallenged = true
			break
		}
	}

	var verdict domain.Verdict
	switch {
	case verdictChallenged &&
		(cross.PreliminaryVerdict == domain.VerdictAuthentic || cross.PreliminaryVerdict == domain.VerdictForged):
		verdict = domain.VerdictInconclusive
	case adjusted >= AuthenticThreshold && cross.PreliminaryVerdict == domain.VerdictAuthentic:
		verdict = domain.VerdictAuthentic
	case cross.PreliminaryVerdict == domain.VerdictForged:
		verdict = domain.VerdictForged
	default:
		verdict = domain.VerdictInconclusive
	}

	hitl := verdict == domain.VerdictInconclusive ||
		critique.ThreatLevel == domain.ThreatMedium ||
		critique.ThreatLevel == domain.ThreatHigh ||
		len(critique.BlindSpots) >= 2

	return verdict, adjusted, hitl
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

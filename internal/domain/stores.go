package domain

import (
	"context"

	"github.com/google/uuid"
)

// CaseStore persists verification cases.
type CaseStore interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	UpdateResult(ctx context.Context, id uuid.UUID, status CaseStatus, verdict Verdict, confidence float64, hitlRequired bool) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status CaseStatus) error
}

// StoredOpinion is an opinion record tied to a case.
type StoredOpinion struct {
	ID     uuid.UUID `json:"id"`
	CaseID uuid.UUID `json:"case_id"`
	OpinionRecord
}

// OpinionStore persists per-source opinion records.
type OpinionStore interface {
	Create(ctx context.Context, caseID uuid.UUID, rec OpinionRecord) error
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]StoredOpinion, error)
}

// StoredResult holds the aggregation and critique stage outputs for a case.
type StoredResult struct {
	ID             uuid.UUID            `json:"id"`
	CaseID         uuid.UUID            `json:"case_id"`
	CrossReference CrossReferenceResult `json:"cross_reference"`
	Critique       CritiqueResult       `json:"critique"`
}

// ResultStore persists one adjudication result per case.
type ResultStore interface {
	Create(ctx context.Context, caseID uuid.UUID, cross CrossReferenceResult, critique CritiqueResult) error
	GetByCaseID(ctx context.Context, caseID uuid.UUID) (*StoredResult, error)
}

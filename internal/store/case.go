package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verisight-labs/verisight/internal/domain"
)

var ErrNotFound = errors.New("not found")

type CaseStore struct {
	db *pgxpool.Pool
}

func NewCaseStore(db *pgxpool.Pool) *CaseStore {
	return &CaseStore{db: db}
}

func (s *CaseStore) Create(ctx context.Context, c *domain.Case) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO cases (client_id, status, media_kind, file_url, file_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.ClientID, c.Status, c.MediaKind, c.FileURL, c.FileHash,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (s *CaseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	var c domain.Case
	err := s.db.QueryRow(ctx,
		`SELECT id, client_id, status, media_kind, file_url, file_hash,
		        confidence, verdict, hitl_required, created_at, updated_at
		 FROM cases WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.ClientID, &c.Status, &c.MediaKind, &c.FileURL, &c.FileHash,
		&c.Confidence, &c.Verdict, &c.HITLRequired, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CaseStore) UpdateResult(ctx context.Context, id uuid.UUID, status domain.CaseStatus, verdict domain.Verdict, confidence float64, hitlRequired bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE cases
		 SET status = $2, verdict = $3, confidence = $4, hitl_required = $5, updated_at = now()
		 WHERE id = $1`,
		id, status, verdict, confidence, hitlRequired,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CaseStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CaseStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE cases SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

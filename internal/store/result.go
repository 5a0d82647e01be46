package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verisight-labs/verisight/internal/domain"
)

type ResultStore struct {
	db *pgxpool.Pool
}

func NewResultStore(db *pgxpool.Pool) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) Create(ctx context.Context, caseID uuid.UUID, cross domain.CrossReferenceResult, critique domain.CritiqueResult) error {
	crossJSON, err := json.Marshal(cross)
	if err != nil {
		return fmt.Errorf("marshal cross reference: %w", err)
	}
	critiqueJSON, err := json.Marshal(critique)
	if err != nil {
		return fmt.Errorf("marshal critique: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO analysis_results (case_id, cross_reference, critique)
		 VALUES ($1, $2, $3)`,
		caseID, crossJSON, critiqueJSON,
	)
	return err
}

func (s *ResultStore) GetByCaseID(ctx context.Context, caseID uuid.UUID) (*domain.StoredResult, error) {
	var res domain.StoredResult
	var crossJSON, critiqueJSON []byte
	err := s.db.QueryRow(ctx,
		`SELECT id, case_id, cross_reference, critique
		 FROM analysis_results WHERE case_id = $1`,
		caseID,
	).Scan(&res.ID, &res.CaseID, &crossJSON, &critiqueJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(crossJSON, &res.CrossReference); err != nil {
		return nil, fmt.Errorf("unmarshal cross reference: %w", err)
	}
	if err := json.Unmarshal(critiqueJSON, &res.Critique); err != nil {
		return nil, fmt.Errorf("unmarshal critique: %w", err)
	}
	return &res, nil
}

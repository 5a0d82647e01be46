package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verisight-labs/verisight/internal/domain"
)

type OpinionStore struct {
	db *pgxpool.Pool
}

func NewOpinionStore(db *pgxpool.Pool) *OpinionStore {
	return &OpinionStore{db: db}
}

func (s *OpinionStore) Create(ctx context.Context, caseID uuid.UUID, rec domain.OpinionRecord) error {
	findings, err := json.Marshal(rec.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}
	anomalies, err := json.Marshal(rec.Anomalies)
	if err != nil {
		return fmt.Errorf("marshal anomalies: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO opinion_records (case_id, source_kind, confidence, findings, anomalies)
		 VALUES ($1, $2, $3, $4, $5)`,
		caseID, rec.SourceKind, rec.Confidence, findings, anomalies,
	)
	return err
}

func (s *OpinionStore) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]domain.StoredOpinion, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, case_id, source_kind, confidence, findings, anomalies
		 FROM opinion_records WHERE case_id = $1
		 ORDER BY created_at`,
		caseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opinions []domain.StoredOpinion
	for rows.Next() {
		var op domain.StoredOpinion
		var findings, anomalies []byte
		if err := rows.Scan(&op.ID, &op.CaseID, &op.SourceKind, &op.Confidence, &findings, &anomalies); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(findings, &op.Findings); err != nil {
			return nil, fmt.Errorf("unmarshal findings: %w", err)
		}
		if err := json.Unmarshal(anomalies, &op.Anomalies); err != nil {
			return nil, fmt.Errorf("unmarshal anomalies: %w", err)
		}
		opinions = append(opinions, op)
	}
	return opinions, rows.Err()
}

// README: Prediction audit log backed by PostgreSQL.
package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"deliveryeta/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Save(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec.Raw)
	if err != nil {
		return fmt.Errorf("marshal raw record: %w", err)
	}
	feats, err := json.Marshal(rec.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO predictions (
            id, order_id, raw, features, prediction, model_name, model_version, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(rec.ID),
		rec.Raw.ID,
		raw,
		feats,
		rec.Prediction,
		rec.ModelName,
		rec.ModelVersion,
		rec.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Record, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, raw, features, prediction, model_name, model_version, created_at
        FROM predictions
        WHERE id = $1`, string(id),
	)

	var rec Record
	var raw, feats []byte
	err := row.Scan(&rec.ID, &raw, &feats, &rec.Prediction, &rec.ModelName, &rec.ModelVersion, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &rec.Raw); err != nil {
		return nil, fmt.Errorf("decode raw record: %w", err)
	}
	if err := json.Unmarshal(feats, &rec.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return &rec, nil
}

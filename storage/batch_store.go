// Package storage implements keyed persistence for batch records.
// Pure CRUD: lifecycle rules live in the integration service, not here.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/elinasafina23/EBR/batch"
	"github.com/elinasafina23/EBR/errors"
)

// BatchStore provides storage operations for batch records
type BatchStore struct {
	db *sql.DB
}

// NewBatchStore creates a new batch record store
func NewBatchStore(db *sql.DB) *BatchStore {
	return &BatchStore{db: db}
}

// Upsert creates or replaces a batch record keyed by batch_id.
// The identity key never changes; every other field is replaced.
func (s *BatchStore) Upsert(ctx context.Context, record *batch.Record) error {
	data, err := json.Marshal(record.Data)
	if err != nil {
		return errors.Wrapf(err, "failed to encode data for batch %s", record.BatchID)
	}
	equipment, err := json.Marshal(record.Equipment)
	if err != nil {
		return errors.Wrapf(err, "failed to encode equipment for batch %s", record.BatchID)
	}

	query := `
		INSERT INTO batch_records (batch_id, recipe_id, status, started_at, completed_at, data, equipment)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(batch_id) DO UPDATE SET
			recipe_id = excluded.recipe_id,
			status = excluded.status,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			data = excluded.data,
			equipment = excluded.equipment
	`

	_, err = s.db.ExecContext(ctx, query,
		record.BatchID, record.RecipeID, string(record.Status),
		formatTime(record.StartedAt), formatTime(record.CompletedAt),
		string(data), string(equipment),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to upsert batch record %s", record.BatchID)
	}

	return nil
}

// Get retrieves a batch record by id
func (s *BatchStore) Get(ctx context.Context, batchID string) (*batch.Record, error) {
	query := `SELECT batch_id, recipe_id, status, started_at, completed_at, data, equipment
	          FROM batch_records WHERE batch_id = ?`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, batchID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundf("batch record %s not found", batchID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get batch record %s", batchID)
	}

	return record, nil
}

// List returns all batch records in storage order
func (s *BatchStore) List(ctx context.Context) ([]*batch.Record, error) {
	query := `SELECT batch_id, recipe_id, status, started_at, completed_at, data, equipment
	          FROM batch_records ORDER BY rowid ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list batch records")
	}
	defer rows.Close()

	var records []*batch.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan batch record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate batch records")
	}

	return records, nil
}

// UpdateStatus writes a new status and applies the timestamp rules:
// started_at is set only when entering in_progress, completed_at only when
// entering a terminal status. Returns the updated record, or ErrNotFound
// without mutation when the id is absent.
func (s *BatchStore) UpdateStatus(ctx context.Context, batchID string, status batch.Status, timestamp time.Time) (*batch.Record, error) {
	query := "UPDATE batch_records SET status = ?"
	args := []any{string(status)}

	switch {
	case status == batch.StatusInProgress:
		query += ", started_at = ?"
		args = append(args, timestamp.UTC().Format(time.RFC3339Nano))
	case status.Terminal():
		query += ", completed_at = ?"
		args = append(args, timestamp.UTC().Format(time.RFC3339Nano))
	}

	query += " WHERE batch_id = ?"
	args = append(args, batchID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update status of batch record %s", batchID)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read update result for batch record %s", batchID)
	}
	if affected == 0 {
		return nil, errors.NewNotFoundf("batch record %s not found", batchID)
	}

	return s.Get(ctx, batchID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*batch.Record, error) {
	var record batch.Record
	var status string
	var startedAt, completedAt sql.NullString
	var data, equipment string

	if err := row.Scan(
		&record.BatchID, &record.RecipeID, &status,
		&startedAt, &completedAt, &data, &equipment,
	); err != nil {
		return nil, err
	}

	record.Status = batch.Status(status)

	var err error
	if record.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, errors.Wrapf(err, "invalid started_at for batch %s", record.BatchID)
	}
	if record.CompletedAt, err = parseTime(completedAt); err != nil {
		return nil, errors.Wrapf(err, "invalid completed_at for batch %s", record.BatchID)
	}

	if err := json.Unmarshal([]byte(data), &record.Data); err != nil {
		return nil, errors.Wrapf(err, "invalid data payload for batch %s", record.BatchID)
	}
	if err := json.Unmarshal([]byte(equipment), &record.Equipment); err != nil {
		return nil, errors.Wrapf(err, "invalid equipment list for batch %s", record.BatchID)
	}

	return &record, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

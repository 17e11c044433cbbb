package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/dbx"
)

// SQLiteRepository implements Repository. Timestamps are stored as Unix
// nanoseconds.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, ev models.StateEvent) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO uploads (job_id, file_name, state, failure_code, file_id, hash, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(job_id) DO UPDATE SET state = excluded.state,
				failure_code = excluded.failure_code,
				file_id = CASE WHEN excluded.file_id <> '' THEN excluded.file_id ELSE uploads.file_id END,
				hash = CASE WHEN excluded.hash <> '' THEN excluded.hash ELSE uploads.hash END,
				updated_at = excluded.updated_at`

		_, err := tx.ExecContext(ctx, query,
			ev.JobID, ev.FileName, string(ev.State), ev.FailureCode, ev.FileID, ev.Hash, ev.At.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to upsert upload: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO upload_events (job_id, state, failure_code, at) VALUES (?, ?, ?, ?)`,
			ev.JobID, string(ev.State), ev.FailureCode, ev.At.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert upload event: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.UploadRecord, error) {
	query := `SELECT job_id, file_name, state, failure_code, file_id, hash, updated_at
		FROM uploads ORDER BY updated_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select uploads: %w", err)
	}
	defer rows.Close()

	var result []models.UploadRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, jobID string) (*models.UploadRecord, error) {
	query := `SELECT job_id, file_name, state, failure_code, file_id, hash, updated_at
		FROM uploads WHERE job_id = ?`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	return rec, err
}

func (r *SQLiteRepository) History(ctx context.Context, jobID string) ([]models.StateEvent, error) {
	query := `SELECT e.state, e.failure_code, e.at, u.file_name
		FROM upload_events e JOIN uploads u ON u.job_id = e.job_id
		WHERE e.job_id = ? ORDER BY e.id`
	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to select upload events: %w", err)
	}
	defer rows.Close()

	var result []models.StateEvent
	for rows.Next() {
		ev := models.StateEvent{JobID: jobID}
		var state string
		var at int64
		if err := rows.Scan(&state, &ev.FailureCode, &at, &ev.FileName); err != nil {
			return nil, err
		}
		ev.State = models.UploadState(state)
		ev.At = time.Unix(0, at).UTC()
		result = append(result, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.UploadRecord, error) {
	var rec models.UploadRecord
	var state string
	var updated int64
	if err := s.Scan(&rec.JobID, &rec.FileName, &state, &rec.FailureCode, &rec.FileID, &rec.Hash, &updated); err != nil {
		return nil, err
	}
	rec.State = models.UploadState(state)
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	return &rec, nil
}

package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/dbx"
	"github.com/dmitrijs2005/scimaterials/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const selectColumns = `SELECT id, file_name, content_type, hash, size FROM files`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	return r.selectOne(ctx, selectColumns+` WHERE id=$1`, id)
}

// GetByHash returns the most recently updated record with the given digest.
func (r *PostgresRepository) GetByHash(ctx context.Context, hash string) (*models.FileRecord, error) {
	return r.selectOne(ctx, selectColumns+` WHERE hash=$1 ORDER BY updated_at DESC LIMIT 1`, hash)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.FileRecord, error) {
	return r.selectOne(ctx, selectColumns+` WHERE file_name=$1`, name)
}

func (r *PostgresRepository) selectOne(ctx context.Context, query string, arg string) (*models.FileRecord, error) {
	rec := &models.FileRecord{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&rec.ID, &rec.FileName, &rec.ContentType, &rec.Hash, &rec.Size)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Add(ctx context.Context, rec *models.FileRecord) error {
	query := `INSERT INTO files (id, file_name, content_type, hash, size) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.FileName, rec.ContentType, rec.Hash, rec.Size)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", common.ErrAlreadyExists, rec.FileName)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update replaces hash and size of an existing record.
func (r *PostgresRepository) Update(ctx context.Context, rec *models.FileRecord) error {
	query := `UPDATE files SET hash=$2, size=$3, updated_at=now() WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, rec.ID, rec.Hash, rec.Size)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

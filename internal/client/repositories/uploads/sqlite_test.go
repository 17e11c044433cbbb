package uploads

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/client/migrations"
	"github.com/dmitrijs2005/scimaterials/internal/client/models"
	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))

	return db
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSave_TracksLatestStateAndHistory(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	events := []models.StateEvent{
		{JobID: "j1", FileName: "report.pdf", State: models.StateQueued, At: t0},
		{JobID: "j1", FileName: "report.pdf", State: models.StateUploading, At: t0.Add(30 * time.Second)},
		{JobID: "j1", FileName: "report.pdf", State: models.StateUploaded, FileID: "f1", Hash: "abc", At: t0.Add(31 * time.Second)},
	}
	for _, ev := range events {
		require.NoError(t, r.Save(ctx, ev))
	}

	rec, err := r.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, &models.UploadRecord{
		JobID: "j1", FileName: "report.pdf", State: models.StateUploaded,
		FileID: "f1", Hash: "abc", UpdatedAt: t0.Add(31 * time.Second),
	}, rec)

	hist, err := r.History(ctx, "j1")
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, models.StateQueued, hist[0].State)
	assert.Equal(t, models.StateUploaded, hist[2].State)
	assert.Equal(t, t0, hist[0].At)
	assert.Equal(t, "report.pdf", hist[1].FileName)
}

func TestSave_FailureCode(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, models.StateEvent{JobID: "j1", FileName: "a.txt", State: models.StateQueued, At: t0}))
	require.NoError(t, r.Save(ctx, models.StateEvent{JobID: "j1", FileName: "a.txt", State: models.StateFailed, FailureCode: models.CodeAlreadyExists, At: t0}))

	rec, err := r.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.StateFailed, rec.State)
	assert.Equal(t, models.CodeAlreadyExists, rec.FailureCode)
	assert.Empty(t, rec.FileID)
}

func TestList_NewestFirst(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, models.StateEvent{JobID: "a", FileName: "a.txt", State: models.StateQueued, At: t0}))
	require.NoError(t, r.Save(ctx, models.StateEvent{JobID: "b", FileName: "b.txt", State: models.StateQueued, At: t0.Add(time.Second)}))
	require.NoError(t, r.Save(ctx, models.StateEvent{JobID: "a", FileName: "a.txt", State: models.StateUploading, At: t0.Add(2 * time.Second)}))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].JobID)
	assert.Equal(t, models.StateUploading, list[0].State)
	assert.Equal(t, "b", list[1].JobID)
}

func TestList_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	list, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSave_ClosedDB(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	err := r.Save(context.Background(), models.StateEvent{JobID: "j", State: models.StateQueued, At: t0})
	assert.Error(t, err)
}

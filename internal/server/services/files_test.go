package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/dmitrijs2005/scimaterials/internal/server/config"
	"github.com/dmitrijs2005/scimaterials/internal/server/models"
	"github.com/dmitrijs2005/scimaterials/internal/server/repositories/files"
	"github.com/dmitrijs2005/scimaterials/internal/server/store"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type countingRepo struct {
	files.Repository
	adds    int
	updates int
	addErr  error
}

func (r *countingRepo) Add(ctx context.Context, rec *models.FileRecord) error {
	r.adds++
	if r.addErr != nil {
		return r.addErr
	}
	return r.Repository.Add(ctx, rec)
}

func (r *countingRepo) Update(ctx context.Context, rec *models.FileRecord) error {
	r.updates++
	return r.Repository.Update(ctx, rec)
}

type brokenStore struct {
	store.Store
	writes int
}

func (s *brokenStore) Write(ctx context.Context, dst string, src io.Reader) (store.WriteResult, error) {
	s.writes++
	return store.WriteResult{}, errors.New("disk full")
}

type flakyMetaStore struct {
	store.Store
}

func (s *flakyMetaStore) WriteMetadata(ctx context.Context, path string, rec *models.FileRecord) error {
	return errors.New("read-only filesystem")
}

// uuidColumnRepo rejects malformed ids the way a uuid column does.
type uuidColumnRepo struct {
	files.Repository
	lookups int
}

func (r *uuidColumnRepo) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	r.lookups++
	return nil, fmt.Errorf("failed to select file: invalid input syntax for type uuid: %q", id)
}

// -------- helpers --------

func newTestService(t *testing.T, mutate func(c *config.Config), opts ...FileServiceOption) (*FileService, *countingRepo, string) {
	t.Helper()
	base := t.TempDir()
	cfg := &config.Config{BasePath: base}
	if mutate != nil {
		mutate(cfg)
	}
	h, err := store.NewHashFunc("sha256")
	require.NoError(t, err)

	repo := &countingRepo{Repository: files.NewMemoryRepository()}
	svc, err := NewFileService(repo, store.NewLocalStore(h), cfg, logging.NewNopLogger(), opts...)
	require.NoError(t, err)
	return svc, repo, base
}

func sha(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// -------- tests --------

func TestNewFileService_RequiresBasePath(t *testing.T) {
	_, err := NewFileService(files.NewMemoryRepository(), nil, &config.Config{}, logging.NewNopLogger())
	assert.ErrorIs(t, err, config.ErrMissingBasePath)
}

func TestUpload_NewFile(t *testing.T) {
	svc, repo, base := newTestService(t, nil)
	ctx := context.Background()

	payload := bytes.Repeat([]byte{0x5a}, 10*1024*1024)
	rec, err := svc.Upload(ctx, bytes.NewReader(payload), "report.pdf", "application/pdf")
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "report.pdf", rec.FileName)
	assert.Equal(t, "application/pdf", rec.ContentType)
	assert.Equal(t, sha(payload), rec.Hash)
	assert.EqualValues(t, 10485760, rec.Size)
	assert.Equal(t, 1, repo.adds)

	stored, err := os.ReadFile(filepath.Join(base, rec.ID))
	require.NoError(t, err)
	assert.Equal(t, sha(payload), sha(stored))

	sidecar, err := os.ReadFile(filepath.Join(base, rec.ID+".json"))
	require.NoError(t, err)
	var meta models.FileRecord
	require.NoError(t, json.Unmarshal(sidecar, &meta))
	assert.Equal(t, *rec, meta)

	byID, err := svc.GetFileInfoByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, byID)
}

func TestUpload_StripsDirectories(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	rec, err := svc.Upload(context.Background(), bytes.NewReader([]byte("x")), `C:\docs\notes.txt`, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", rec.FileName)

	rec, err = svc.Upload(context.Background(), bytes.NewReader([]byte("x")), "/home/u/slides.pptx", "")
	require.NoError(t, err)
	assert.Equal(t, "slides.pptx", rec.FileName)
}

func TestUpload_RejectsEmptyName(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)

	for _, name := range []string{"", "   ", "dir/", "..", "a/."} {
		_, err := svc.Upload(context.Background(), bytes.NewReader([]byte("x")), name, "")
		assert.ErrorIs(t, err, common.ErrValidation, "name %q", name)
	}
	assert.Zero(t, repo.adds)
}

func TestUpload_DuplicateWithoutOverwrite(t *testing.T) {
	svc, repo, base := newTestService(t, nil)
	ctx := context.Background()

	first, err := svc.Upload(ctx, bytes.NewReader([]byte("v1")), "a.txt", "text/plain")
	require.NoError(t, err)

	_, err = svc.Upload(ctx, bytes.NewReader([]byte("v2-longer")), "a.txt", "text/plain")
	require.ErrorIs(t, err, common.ErrAlreadyExists)

	stored, err := os.ReadFile(filepath.Join(base, first.ID))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(stored), "storage must be untouched")
	assert.Equal(t, 1, repo.adds)
	assert.Zero(t, repo.updates)
}

func TestUpload_OverwriteKeepsIdentity(t *testing.T) {
	svc, repo, base := newTestService(t, func(c *config.Config) { c.Overwrite = true })
	ctx := context.Background()

	first, err := svc.Upload(ctx, bytes.NewReader([]byte("v1")), "a.txt", "text/plain")
	require.NoError(t, err)

	second, err := svc.Upload(ctx, bytes.NewReader([]byte("second version")), "a.txt", "application/octet-stream")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "text/plain", second.ContentType)
	assert.Equal(t, sha([]byte("second version")), second.Hash)
	assert.EqualValues(t, len("second version"), second.Size)
	assert.Equal(t, 1, repo.adds)
	assert.Equal(t, 1, repo.updates)

	stored, err := os.ReadFile(filepath.Join(base, first.ID))
	require.NoError(t, err)
	assert.Equal(t, "second version", string(stored))
}

func TestUpload_StorageFailureSkipsRepository(t *testing.T) {
	base := t.TempDir()
	repo := &countingRepo{Repository: files.NewMemoryRepository()}
	st := &brokenStore{}
	svc, err := NewFileService(repo, st, &config.Config{BasePath: base}, logging.NewNopLogger())
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), bytes.NewReader([]byte("x")), "a.txt", "text/plain")
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Equal(t, 1, st.writes)
	assert.Zero(t, repo.adds)

	_, err = repo.GetByName(context.Background(), "a.txt")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpload_CanceledContext(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Upload(ctx, bytes.NewReader([]byte("x")), "a.txt", "")
	require.ErrorIs(t, err, common.ErrCanceled)
	assert.Zero(t, repo.adds)
}

func TestUpload_RepositoryFailure(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	repo.addErr = errors.New("db down")

	_, err := svc.Upload(context.Background(), bytes.NewReader([]byte("x")), "a.txt", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NotErrorIs(t, err, common.ErrStorage)
}

func TestUpload_SidecarFailure(t *testing.T) {
	base := t.TempDir()
	h, _ := store.NewHashFunc("sha256")
	st := &flakyMetaStore{Store: store.NewLocalStore(h)}
	svc, err := NewFileService(files.NewMemoryRepository(), st, &config.Config{BasePath: base}, logging.NewNopLogger())
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), bytes.NewReader([]byte("x")), "a.txt", "")
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestUpload_SameContentDifferentNames(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	a, err := svc.Upload(ctx, bytes.NewReader([]byte("same bytes")), "a.txt", "text/plain")
	require.NoError(t, err)
	b, err := svc.Upload(ctx, bytes.NewReader([]byte("same bytes")), "b.txt", "text/plain")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Hash, b.Hash)

	got, err := svc.GetFileInfoByHash(ctx, a.Hash)
	require.NoError(t, err)
	assert.Contains(t, []string{a.ID, b.ID}, got.ID)
	assert.Equal(t, a.Hash, got.Hash)
}

func TestUpload_ElapsedTimeUsesClock(t *testing.T) {
	clk := testclock.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	svc, _, _ := newTestService(t, nil, WithClock(clk))

	_, err := svc.Upload(context.Background(), bytes.NewReader([]byte("x")), "a.txt", "")
	require.NoError(t, err)
	assert.Same(t, clk, svc.clock)
}

func TestUpload_LockByNameSerializesSameName(t *testing.T) {
	svc, repo, _ := newTestService(t, func(c *config.Config) { c.LockByName = true })
	require.NotNil(t, svc.names)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Upload(context.Background(), bytes.NewReader([]byte("payload")), "shared.txt", "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, dup := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrAlreadyExists):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
	assert.Equal(t, 1, repo.adds, "the lock keeps losers away from the repository")
}

func TestGetFileStream(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	rec, err := svc.Upload(ctx, bytes.NewReader([]byte("hello")), "a.txt", "")
	require.NoError(t, err)

	rc, err := svc.GetFileStream(ctx, rec.ID)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	_, err = svc.GetFileStream(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = svc.GetFileStream(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetFileInfo_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.GetFileInfoByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = svc.GetFileInfoByHash(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetFileInfo_MalformedIDIsNotFound(t *testing.T) {
	repo := &uuidColumnRepo{Repository: files.NewMemoryRepository()}
	h, err := store.NewHashFunc("sha256")
	require.NoError(t, err)
	svc, err := NewFileService(repo, store.NewLocalStore(h), &config.Config{BasePath: t.TempDir()}, logging.NewNopLogger())
	require.NoError(t, err)

	for _, id := range []string{"zzz", "", "../etc/passwd", "123"} {
		_, err := svc.GetFileInfoByID(context.Background(), id)
		assert.ErrorIs(t, err, common.ErrorNotFound, "id %q", id)
	}
	assert.Zero(t, repo.lookups)
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"report.pdf":          "report.pdf",
		"  spaced.txt ":       "spaced.txt",
		"a/b/c.txt":           "c.txt",
		`a\b\c.txt`:           "c.txt",
		"trailing/":           "",
		"..":                  "",
		"":                    "",
		"dir/with space.docx": "with space.docx",
	}
	for in, want := range tests {
		assert.Equal(t, want, BaseName(in), "input %q", in)
	}
}

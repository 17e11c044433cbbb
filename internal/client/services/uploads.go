// Package services contains the client's use cases: scheduling uploads,
// canceling them, reading the journal and querying the server.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
	"github.com/dmitrijs2005/scimaterials/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/gabriel-vasile/mimetype"
)

// UploadOptions carries the descriptive metadata of an upload.
type UploadOptions struct {
	Title    string
	Category string
}

type UploadService interface {
	Schedule(ctx context.Context, path string, opts UploadOptions) (*models.UploadRequest, error)
	Cancel(jobID string) error
	List(ctx context.Context) ([]models.UploadRecord, error)
	History(ctx context.Context, jobID string) ([]models.StateEvent, error)
	Close()
}

// JobScheduler accepts upload jobs.
type JobScheduler interface {
	Schedule(job *models.UploadRequest) error
}

// StateSubscriber delivers job state events.
type StateSubscriber interface {
	Subscribe(fn func(models.StateEvent)) func()
}

type uploadService struct {
	scheduler   JobScheduler
	journal     uploads.Repository
	authorID    string
	logger      logging.Logger
	unsubscribe func()

	mu     sync.Mutex
	active map[string]*models.UploadRequest
}

// NewUploadService keeps a registry of unfinished jobs, fed by events, so
// that they can be canceled by id.
func NewUploadService(scheduler JobScheduler, events StateSubscriber, journal uploads.Repository, authorID string, logger logging.Logger) UploadService {
	s := &uploadService{
		scheduler: scheduler,
		journal:   journal,
		authorID:  authorID,
		logger:    logger.With("module", "upload_service"),
		active:    make(map[string]*models.UploadRequest),
	}
	s.unsubscribe = events.Subscribe(s.onState)
	return s
}

func (s *uploadService) onState(ev models.StateEvent) {
	if !ev.State.IsTerminal() {
		return
	}
	s.mu.Lock()
	delete(s.active, ev.JobID)
	s.mu.Unlock()
}

// Schedule opens path, sniffs its content type and hands the job to the
// scheduler. The scheduler closes the file.
func (s *uploadService) Schedule(ctx context.Context, path string, opts UploadOptions) (*models.UploadRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	job, err := s.newJob(f, path, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	s.mu.Lock()
	s.active[job.ID] = job
	s.mu.Unlock()

	if err := s.scheduler.Schedule(job); err != nil {
		s.mu.Lock()
		delete(s.active, job.ID)
		s.mu.Unlock()
		job.Cancel()
		_ = f.Close()
		return nil, fmt.Errorf("schedule %s: %w", job.FileName, err)
	}

	s.logger.Info(ctx, "upload scheduled", "job_id", job.ID, "file_name", job.FileName, "size", job.Size, "content_type", job.ContentType)
	return job, nil
}

func (s *uploadService) newJob(f *os.File, path string, opts UploadOptions) (*models.UploadRequest, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", common.ErrValidation, path)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("detect content type of %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	job := models.NewUploadRequest(f, filepath.Base(path), mt.String(), st.Size())
	job.AuthorID = s.authorID
	job.Title = opts.Title
	job.Category = opts.Category
	return job, nil
}

// Cancel requests cancellation of an unfinished job.
func (s *uploadService) Cancel(jobID string) error {
	s.mu.Lock()
	job, ok := s.active[jobID]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: no active upload %s", common.ErrorNotFound, jobID)
	}
	job.Cancel()
	return nil
}

func (s *uploadService) List(ctx context.Context) ([]models.UploadRecord, error) {
	return s.journal.List(ctx)
}

func (s *uploadService) History(ctx context.Context, jobID string) ([]models.StateEvent, error) {
	hist, err := s.journal.History(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(hist) == 0 {
		return nil, fmt.Errorf("%w: upload %s", common.ErrorNotFound, jobID)
	}
	return hist, nil
}

func (s *uploadService) Close() {
	s.unsubscribe()
}

// JournalObserver records every event in repo. Save errors are logged.
func JournalObserver(repo uploads.Repository, logger logging.Logger) func(models.StateEvent) {
	logger = logger.With("module", "upload_journal")
	return func(ev models.StateEvent) {
		if err := repo.Save(context.Background(), ev); err != nil {
			logger.Error(context.Background(), "journal save failed", "job_id", ev.JobID, "state", ev.State, "error", err)
		}
	}
}

// IsNotFound reports whether err means the requested item does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}

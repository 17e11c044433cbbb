// Package models holds the client-side upload types shared by the scheduler,
// the remote client and the journal.
package models

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// UploadState is the externally observable status of an upload job.
type UploadState string

const (
	StateQueued    UploadState = "queued"
	StateUploading UploadState = "uploading"
	StateUploaded  UploadState = "uploaded"
	StateFailed    UploadState = "failed"
	StateCanceled  UploadState = "canceled"
)

func (s UploadState) IsTerminal() bool {
	return s == StateUploaded || s == StateFailed || s == StateCanceled
}

// CanTransition reports whether a job in state s may move to next.
func (s UploadState) CanTransition(next UploadState) bool {
	switch s {
	case "":
		return next == StateQueued
	case StateQueued:
		return next == StateUploading
	case StateUploading:
		return next.IsTerminal()
	default:
		return false
	}
}

// Failure codes carried by failed uploads.
const (
	CodeAlreadyExists   = "already_exists"
	CodeNotFound        = "not_found"
	CodeInvalidArgument = "invalid_argument"
	CodeUnauthorized    = "unauthorized"
	CodeUnavailable     = "unavailable"
	CodeStorageFailure  = "storage_failure"
	CodeCanceled        = "canceled"
	CodeInternal        = "internal"
)

// UploadRequest is one queued upload job. The scheduler owns Source once the
// job is dequeued and closes it after processing.
type UploadRequest struct {
	ID          string
	Source      io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
	Category    string
	AuthorID    string
	Title       string

	ctx      context.Context
	cancel   context.CancelFunc
	finished atomic.Bool
}

// NewUploadRequest creates a job with a fresh id and its own cancellation signal.
func NewUploadRequest(src io.ReadCloser, fileName, contentType string, size int64) *UploadRequest {
	ctx, cancel := context.WithCancel(context.Background())
	return &UploadRequest{
		ID:          uuid.NewString(),
		Source:      src,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Context is done once the job is canceled.
func (r *UploadRequest) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Cancel requests cancellation. It is safe to call more than once.
func (r *UploadRequest) Cancel() {
	if r.cancel != nil {
		r.cancel()
	}
}

// MarkFinished records that the job reached a terminal state.
func (r *UploadRequest) MarkFinished() {
	r.finished.Store(true)
}

func (r *UploadRequest) Finished() bool {
	return r.finished.Load()
}

func (r *UploadRequest) Canceled() bool {
	return r.Context().Err() != nil
}

// FileRequest returns the metadata sent to the server for this job.
func (r *UploadRequest) FileRequest() UploadFileRequest {
	return UploadFileRequest{
		Name:        r.FileName,
		Size:        r.Size,
		ContentType: r.ContentType,
		Category:    r.Category,
		AuthorID:    r.AuthorID,
		Title:       r.Title,
	}
}

// UploadFileRequest is the metadata of a remote upload call.
type UploadFileRequest struct {
	Name        string
	Size        int64
	ContentType string
	Category    string
	AuthorID    string
	Title       string
}

// FileInfo is the server's view of a stored file.
type FileInfo struct {
	ID          string
	FileName    string
	ContentType string
	Hash        string
	Size        int64
}

// UploadResult is the outcome of a remote upload call. Code is set only
// when Succeeded is false, File only when it is true.
type UploadResult struct {
	Succeeded bool
	Code      string
	File      *FileInfo
}

// StateEvent is emitted on every job state transition.
type StateEvent struct {
	JobID       string
	FileName    string
	State       UploadState
	FailureCode string
	FileID      string
	Hash        string
	At          time.Time
}

// UploadRecord is the journal's latest known state of a job.
type UploadRecord struct {
	JobID       string
	FileName    string
	State       UploadState
	FailureCode string
	FileID      string
	Hash        string
	UpdatedAt   time.Time
}

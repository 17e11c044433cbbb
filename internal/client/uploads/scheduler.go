package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/juju/clock"
)

// DefaultPeriod is the scheduler tick period when none is configured.
const DefaultPeriod = 30 * time.Second

var ErrSchedulerClosed = errors.New("upload scheduler is closed")

// Uploader performs the remote upload of one job.
type Uploader interface {
	Upload(ctx context.Context, src io.Reader, req models.UploadFileRequest) (*models.UploadResult, error)
}

// Notifier receives one event per job state transition. Notify is called
// while the scheduler holds its state lock and must not call back into it.
type Notifier interface {
	Notify(ctx context.Context, ev models.StateEvent) error
}

// Scheduler drains the queue one job per tick.
//
// The loop starts in NewScheduler and runs until Close. Every scheduled job
// ends in exactly one terminal state unless the scheduler is closed while
// the job is still waiting in the queue; such jobs are abandoned silently.
type Scheduler struct {
	queue    *Queue
	remote   Uploader
	notifier Notifier
	clock    clock.Clock
	period   time.Duration
	logger   logging.Logger

	ctx       context.Context
	stop      context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	closed bool
	states map[string]models.UploadState
}

type SchedulerOption func(*Scheduler)

func WithClock(c clock.Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithPeriod sets the tick period. Non-positive values are ignored.
func WithPeriod(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.period = d
		}
	}
}

// NewScheduler starts the drain loop over queue.
func NewScheduler(queue *Queue, remote Uploader, notifier Notifier, logger logging.Logger, opts ...SchedulerOption) *Scheduler {
	ctx, stop := context.WithCancel(context.Background())

	s := &Scheduler{
		queue:    queue,
		remote:   remote,
		notifier: notifier,
		clock:    clock.WallClock,
		period:   DefaultPeriod,
		logger:   logger.With("module", "upload_scheduler"),
		ctx:      ctx,
		stop:     stop,
		done:     make(chan struct{}),
		states:   make(map[string]models.UploadState),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s
}

// Schedule enqueues job and emits Queued.
func (s *Scheduler) Schedule(job *models.UploadRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSchedulerClosed
	}
	if _, seen := s.states[job.ID]; seen || job.Finished() {
		return fmt.Errorf("job %s already scheduled", job.ID)
	}
	if err := s.queue.Enqueue(job); err != nil {
		return err
	}

	s.transitionLocked(job, models.StateQueued, nil)
	return nil
}

// Pending returns the number of jobs waiting for a tick.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// Close stops the timer, cancels the in-flight upload and waits for the
// loop to exit. Jobs still queued are abandoned: their sources are closed
// and their cancel functions called, no event is emitted for them.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.stop()
		<-s.done

		abandoned := s.queue.Drain()
		for _, job := range abandoned {
			job.Cancel()
			s.closeSource(job)
		}
		if len(abandoned) > 0 {
			s.logger.Info(context.Background(), "abandoned queued uploads", "count", len(abandoned))
		}
	})
}

func (s *Scheduler) run() {
	defer close(s.done)

	timer := s.clock.NewTimer(s.period)
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer.Chan():
			s.tick()
			timer.Reset(s.period)
		}
	}
}

// tick processes at most one job.
func (s *Scheduler) tick() {
	job, ok := s.queue.TryDequeue()
	if !ok {
		return
	}
	s.process(job)
}

func (s *Scheduler) process(job *models.UploadRequest) {
	defer s.closeSource(job)

	s.transition(job, models.StateUploading, nil)

	if job.Canceled() {
		s.transition(job, models.StateCanceled, nil)
		return
	}

	ctx, cancel := context.WithCancel(job.Context())
	stopAfter := context.AfterFunc(s.ctx, cancel)
	defer func() {
		stopAfter()
		cancel()
	}()

	res, err := s.callRemote(ctx, job)

	switch {
	case ctx.Err() != nil:
		s.transition(job, models.StateCanceled, nil)
	case err != nil:
		s.logger.Error(ctx, "upload call failed", "job_id", job.ID, "error", err)
		s.transition(job, models.StateFailed, &models.UploadResult{Code: models.CodeInternal})
	case res == nil:
		s.transition(job, models.StateFailed, &models.UploadResult{Code: models.CodeInternal})
	case !res.Succeeded:
		if res.Code == "" {
			res.Code = models.CodeInternal
		}
		s.transition(job, models.StateFailed, res)
	default:
		s.transition(job, models.StateUploaded, res)
	}
}

func (s *Scheduler) callRemote(ctx context.Context, job *models.UploadRequest) (res *models.UploadResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("upload panicked: %v", r)
		}
	}()

	started := s.clock.Now()
	res, err = s.remote.Upload(ctx, job.Source, job.FileRequest())
	s.logger.Debug(ctx, "upload call returned", "job_id", job.ID, "elapsed", s.clock.Now().Sub(started))
	return res, err
}

func (s *Scheduler) transition(job *models.UploadRequest, next models.UploadState, res *models.UploadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitionLocked(job, next, res)
}

func (s *Scheduler) transitionLocked(job *models.UploadRequest, next models.UploadState, res *models.UploadResult) {
	cur := s.states[job.ID]
	if !cur.CanTransition(next) {
		s.logger.Warn(context.Background(), "rejected state transition", "job_id", job.ID, "from", cur, "to", next)
		return
	}
	if next.IsTerminal() {
		delete(s.states, job.ID)
		job.MarkFinished()
	} else {
		s.states[job.ID] = next
	}

	ev := models.StateEvent{
		JobID:    job.ID,
		FileName: job.FileName,
		State:    next,
		At:       s.clock.Now(),
	}
	switch {
	case next == models.StateFailed && res != nil:
		ev.FailureCode = res.Code
	case next == models.StateUploaded && res != nil && res.File != nil:
		ev.FileID = res.File.ID
		ev.Hash = res.File.Hash
	}

	s.notify(ev)
}

func (s *Scheduler) notify(ev models.StateEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(context.Background(), "state notifier panicked", "job_id", ev.JobID, "state", ev.State, "panic", r)
		}
	}()

	if err := s.notifier.Notify(context.Background(), ev); err != nil {
		s.logger.Warn(context.Background(), "state notification failed", "job_id", ev.JobID, "state", ev.State, "error", err)
	}
}

func (s *Scheduler) closeSource(job *models.UploadRequest) {
	if job.Source == nil {
		return
	}
	if err := job.Source.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing upload source", "job_id", job.ID, "error", err)
	}
}

package uploads

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/juju/pubsub/v2"
)

// StateTopic carries models.StateEvent values.
const StateTopic = "upload.state"

// Hub fans state events out to subscribers. Each subscriber receives events
// in publication order on its own goroutine.
type Hub struct {
	hub *pubsub.SimpleHub

	mu   sync.Mutex
	last func()
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: hubLogger{logger: logger.With("module", "upload_hub")},
		}),
	}
}

// Notify publishes ev without waiting for subscribers.
func (h *Hub) Notify(_ context.Context, ev models.StateEvent) error {
	done := h.hub.Publish(StateTopic, ev)

	h.mu.Lock()
	h.last = done
	h.mu.Unlock()
	return nil
}

// Flush blocks until every subscriber has handled the last published event
// or ctx is done. Subscribers see events in order, so earlier events are
// handled too.
func (h *Hub) Flush(ctx context.Context) error {
	h.mu.Lock()
	done := h.last
	h.mu.Unlock()

	if done == nil {
		return nil
	}
	waited := make(chan struct{})
	go func() {
		done()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn and returns a function removing it.
func (h *Hub) Subscribe(fn func(models.StateEvent)) func() {
	return h.hub.Subscribe(StateTopic, func(_ string, data interface{}) {
		if ev, ok := data.(models.StateEvent); ok {
			fn(ev)
		}
	})
}

// LogObserver logs every event it receives.
func LogObserver(logger logging.Logger) func(models.StateEvent) {
	logger = logger.With("module", "upload_state")
	return func(ev models.StateEvent) {
		ctx := context.Background()
		args := []any{"job_id", ev.JobID, "file_name", ev.FileName, "state", ev.State}
		switch ev.State {
		case models.StateFailed:
			logger.Warn(ctx, "upload failed", append(args, "code", ev.FailureCode)...)
		case models.StateUploaded:
			logger.Info(ctx, "upload finished", append(args, "file_id", ev.FileID, "hash", ev.Hash)...)
		default:
			logger.Info(ctx, "upload state changed", args...)
		}
	}
}

// hubLogger adapts logging.Logger to the printf-style logger of the hub.
type hubLogger struct {
	logger logging.Logger
}

func (l hubLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(context.Background(), fmt.Sprintf(format, args...))
}

func (l hubLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(context.Background(), fmt.Sprintf(format, args...))
}

func (l hubLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(context.Background(), fmt.Sprintf(format, args...))
}

func (l hubLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(context.Background(), fmt.Sprintf(format, args...))
}

func (l hubLogger) Tracef(format string, args ...interface{}) {
	l.logger.Debug(context.Background(), fmt.Sprintf(format, args...))
}

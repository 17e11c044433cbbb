package uploads

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_FanOutInOrder(t *testing.T) {
	hub := NewHub(logging.NewNopLogger())

	first := make(chan models.StateEvent, 10)
	second := make(chan models.StateEvent, 10)
	unsub1 := hub.Subscribe(func(ev models.StateEvent) { first <- ev })
	unsub2 := hub.Subscribe(func(ev models.StateEvent) { second <- ev })
	defer unsub2()

	for _, st := range []models.UploadState{models.StateQueued, models.StateUploading, models.StateUploaded} {
		require.NoError(t, hub.Notify(context.Background(), models.StateEvent{JobID: "j1", State: st}))
	}

	for _, ch := range []chan models.StateEvent{first, second} {
		for _, want := range []models.UploadState{models.StateQueued, models.StateUploading, models.StateUploaded} {
			select {
			case ev := <-ch:
				assert.Equal(t, want, ev.State)
			case <-time.After(waitTimeout):
				t.Fatalf("missing %s", want)
			}
		}
	}

	unsub1()
	require.NoError(t, hub.Notify(context.Background(), models.StateEvent{JobID: "j2", State: models.StateQueued}))

	select {
	case ev := <-second:
		assert.Equal(t, "j2", ev.JobID)
	case <-time.After(waitTimeout):
		t.Fatal("still subscribed handler missed event")
	}
	select {
	case ev := <-first:
		t.Fatalf("unsubscribed handler got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_DrivesSchedulerObservers(t *testing.T) {
	hub := NewHub(logging.NewNopLogger())

	var mu sync.Mutex
	var got []models.UploadState
	done := make(chan struct{})
	unsub := hub.Subscribe(func(ev models.StateEvent) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.State)
		if ev.State.IsTerminal() {
			close(done)
		}
	})
	defer unsub()

	clk := testclock.NewClock(time.Now())
	s := NewScheduler(NewQueue(0), &fakeUploader{}, hub, logging.NewNopLogger(), WithClock(clk), WithPeriod(period))
	defer s.Close()

	job, _ := newJob("a.txt", 1)
	require.NoError(t, s.Schedule(job))
	tick(t, clk)

	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("terminal event not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.UploadState{models.StateQueued, models.StateUploading, models.StateUploaded}, got)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	observe := LogObserver(logging.NewTextLogger(&buf, slog.LevelDebug))

	observe(models.StateEvent{JobID: "j1", FileName: "a.txt", State: models.StateFailed, FailureCode: models.CodeAlreadyExists})
	observe(models.StateEvent{JobID: "j2", FileName: "b.txt", State: models.StateUploaded, FileID: "f1", Hash: "abc"})

	out := buf.String()
	assert.Contains(t, out, "upload failed")
	assert.Contains(t, out, "code=already_exists")
	assert.Contains(t, out, "upload finished")
	assert.Contains(t, out, "file_id=f1")
}

func TestHubLogger(t *testing.T) {
	var buf bytes.Buffer
	l := hubLogger{logger: logging.NewTextLogger(&buf, slog.LevelDebug)}

	l.Errorf("e %d", 1)
	l.Warningf("w %d", 2)
	l.Infof("i %d", 3)
	l.Debugf("d %d", 4)
	l.Tracef("t %d", 5)

	out := buf.String()
	for _, want := range []string{`msg="e 1"`, `msg="w 2"`, `msg="i 3"`, `msg="d 4"`, `msg="t 5"`} {
		assert.Contains(t, out, want)
	}
}

func TestHub_FlushWaitsForSlowSubscriber(t *testing.T) {
	hub := NewHub(logging.NewNopLogger())
	require.NoError(t, hub.Flush(context.Background()), "nothing published yet")

	var mu sync.Mutex
	var got []string
	unsub := hub.Subscribe(func(ev models.StateEvent) {
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		got = append(got, ev.JobID)
		mu.Unlock()
	})
	defer unsub()

	for _, id := range []string{"j1", "j2", "j3"} {
		require.NoError(t, hub.Notify(context.Background(), models.StateEvent{JobID: id, State: models.StateQueued}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, hub.Flush(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"j1", "j2", "j3"}, got)
}

func TestHub_FlushGivesUpWithContext(t *testing.T) {
	hub := NewHub(logging.NewNopLogger())

	release := make(chan struct{})
	unsub := hub.Subscribe(func(models.StateEvent) { <-release })
	defer unsub()
	defer close(release)

	require.NoError(t, hub.Notify(context.Background(), models.StateEvent{JobID: "j1", State: models.StateQueued}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, hub.Flush(ctx), context.DeadlineExceeded)
}

package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/dmitrijs2005/scimaterials/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.BasePath = filepath.Join(t.TempDir(), "files")
	return c
}

func TestNewApp_MissingBasePathIsFatal(t *testing.T) {
	c := testConfig(t)
	c.BasePath = ""

	_, err := NewApp(context.Background(), c, logging.NewNopLogger())
	assert.ErrorIs(t, err, config.ErrMissingBasePath)
}

func TestNewApp_UnknownBackend(t *testing.T) {
	c := testConfig(t)
	c.StorageBackend = "tape"

	_, err := NewApp(context.Background(), c, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewApp_InMemoryRunsAndStops(t *testing.T) {
	c := testConfig(t)

	app, err := NewApp(context.Background(), c, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Nil(t, app.db)
	assert.DirExists(t, c.BasePath)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

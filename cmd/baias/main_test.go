package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baias/internal/catalog"
	"baias/internal/catalog/gateway"
	"baias/internal/catalog/models"
	"baias/internal/catalog/seed"
	"baias/internal/platform/config"
	"baias/internal/platform/logger"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/testutil"
)

const doc = `{"A":{"M1":{"C1":{"types":{"T1":{"baias":{"B1":["PN-100"]}}}}}}}`

var bayFlags = []string{"--sector", "A", "--model", "M1", "--typecode", "C1", "--type", "T1", "--bay", "B1"}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BAIAS_ADMIN_PASSWORD", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func storedBay(t *testing.T, srv *testutil.CatalogServer, p models.Path) models.Items {
	t.Helper()
	raw, err := srv.Backend.Read(context.Background())
	require.NoError(t, err)
	c, err := gateway.Decode(raw)
	require.NoError(t, err)
	items, err := catalog.Bay(c, p)
	require.NoError(t, err)
	return items
}

func TestBrowse(t *testing.T) {
	srv := testutil.NewCatalogServer(t, doc, "admin123")

	out, err := execute(t, append([]string{"browse", "--server", srv.URL}, bayFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "1. PN-100")

	out, err = execute(t, "browse", "--server", srv.URL, "--sector", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "M1")
	assert.Contains(t, out, "select all filters to see the items")
}

func TestEdit(t *testing.T) {
	srv := testutil.NewCatalogServer(t, doc, "admin123")
	bay := models.Path{Sector: "A", Model: "M1", TypeCode: "C1", Type: "T1", Bay: "B1"}

	t.Run("add item", func(t *testing.T) {
		args := append([]string{"edit", "add-item", "PN-200", "--server", srv.URL, "--password", "admin123"}, bayFlags...)
		out, err := execute(t, args...)
		require.NoError(t, err)
		assert.Contains(t, out, "2. PN-200")
		assert.Equal(t, models.Items{"PN-100", "PN-200"}, storedBay(t, srv, bay))
	})

	t.Run("duplicate item is a conflict", func(t *testing.T) {
		args := append([]string{"edit", "add-item", "PN-100", "--server", srv.URL, "--password", "admin123"}, bayFlags...)
		_, err := execute(t, args...)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("add bay under the selected type", func(t *testing.T) {
		_, err := execute(t, "edit", "add", "bay", "B2", "--server", srv.URL, "--password", "admin123",
			"--sector", "A", "--model", "M1", "--typecode", "C1", "--type", "T1")
		require.NoError(t, err)
		assert.Empty(t, storedBay(t, srv, bay.With(models.LevelBay, "B2")))
	})

	t.Run("wrong password", func(t *testing.T) {
		args := append([]string{"edit", "add-item", "PN-300", "--server", srv.URL, "--password", "nope"}, bayFlags...)
		_, err := execute(t, args...)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Equal(t, models.Items{"PN-100", "PN-200"}, storedBay(t, srv, bay))
	})

	t.Run("password required", func(t *testing.T) {
		_, err := execute(t, "edit", "delete", "bay", "--server", srv.URL)
		assert.ErrorContains(t, err, "password required")
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := execute(t, "edit", "delete", "shelf", "--server", srv.URL, "--password", "admin123")
		assert.Error(t, err)
	})
}

func TestSeed(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "data.json")
	t.Setenv("BAIAS_STORE_DRIVER", "file")
	t.Setenv("BAIAS_DATA_FILE", dataFile)
	t.Setenv("BAIAS_REDIS_URL", "")

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote starter catalog")
	raw, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.Equal(t, string(seed.Document()), string(raw))

	require.NoError(t, os.WriteFile(dataFile, []byte(doc), 0o644))
	out, err = execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "already holds a catalog")

	_, err = execute(t, "seed", "--force")
	require.NoError(t, err)
	raw, err = os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.Equal(t, string(seed.Document()), string(raw))
}

func TestServeSeedsAndShutsDown(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Store = config.StoreConfig{Driver: "memory"}
	cfg.Auth.SessionStore = "memory"
	cfg.Redis = config.RedisConfig{}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, ln, true, logger.Discard()) }()

	url := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	out, err := execute(t, "browse", "--server", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Região E")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeRefusesEmptyStore(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Store = config.StoreConfig{Driver: "memory"}
	cfg.Redis = config.RedisConfig{}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = serve(context.Background(), cfg, ln, false, logger.Discard())

	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

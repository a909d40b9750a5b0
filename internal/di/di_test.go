package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/config"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/httpapi"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/metrics"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/testutil"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist/neopersisttest"
)

func testConfig(uri string) *config.Config {
	return &config.Config{
		Neo4jURI:           uri,
		Neo4jUser:          "neo4j",
		Neo4jPassword:      "password",
		Neo4jDatabase:      "neo4j",
		ServerAddress:      ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		CORSAllowedOrigins: []string{"*"},
		IDFormat:           "ulid",
		MetricsEnabled:     true,
	}
}

func TestProvideModelOptions(t *testing.T) {
	cfg := testConfig("bolt://localhost:7687")
	opts, err := ProvideModelOptions(cfg)
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	cfg.IDFormat = "snowflake"
	_, err = ProvideModelOptions(cfg)
	assert.Error(t, err)
}

func TestProvideRunner(t *testing.T) {
	exec := &neopersist.Neo4jExecutor{DBName: "neo4j"}

	assert.Same(t, exec, ProvideRunner(exec, nil))
	assert.IsType(t, &metrics.InstrumentedRunner{}, ProvideRunner(exec, metrics.NewCollector("test")))

	cfg := testConfig("bolt://localhost:7687")
	cfg.MetricsEnabled = false
	assert.Nil(t, ProvideMetrics(cfg))
}

func TestProvideSchema(t *testing.T) {
	runner := neopersisttest.New()
	report := ProvideSchema(context.Background(), runner, zaptest.NewLogger(t))

	assert.Equal(t, SchemaReport{Applied: 4, Total: 4}, report)
	require.Len(t, runner.Calls(), 4)
	assert.True(t, runner.Calls()[0].Contains("CREATE CONSTRAINT", "IF NOT EXISTS"))
}

func TestProvideServer(t *testing.T) {
	cfg := testConfig("bolt://localhost:7687")
	srv := ProvideServer(cfg, http.NotFoundHandler())
	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, time.Second, srv.WriteTimeout)
}

func TestInitializeContainer(t *testing.T) {
	instance := testutil.StartNeo4JContainer(t)
	cfg := testConfig(instance.URI)
	cfg.Neo4jPassword = instance.Password
	ctx := context.Background()

	container, cleanup, err := InitializeContainer(ctx, cfg, zaptest.NewLogger(t), httpapi.ServiceInfo{Name: "Neo4j Social", Version: "test"})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.Equal(t, SchemaReport{Applied: 4, Total: 4}, container.Schema)

	for _, path := range []string{"/health", "/test-db", "/metrics"} {
		rec := httptest.NewRecorder()
		container.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestInitializeStore(t *testing.T) {
	instance := testutil.StartNeo4JContainer(t)
	cfg := testConfig(instance.URI)
	cfg.MetricsEnabled = false

	store, cleanup, err := InitializeStore(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	ctx := context.Background()
	require.NoError(t, store.Executor.Verify(ctx))
	n, err := store.Manager.CountNodes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

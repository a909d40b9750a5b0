// Package di wires the service together with google/wire.
package di

import (
	"context"
	"net/http"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/config"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/httpapi"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/metrics"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/models"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

// closeTimeout bounds how long releasing the driver may take.
const closeTimeout = 5 * time.Second

// Container holds the long-lived components of a running server.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Executor *neopersist.Neo4jExecutor
	Manager  *neopersist.PersistenceManager
	Schema   SchemaReport
	Server   *http.Server
}

// Store holds what the maintenance commands need: a connection and a
// persistence manager on top of it.
type Store struct {
	Executor *neopersist.Neo4jExecutor
	Manager  *neopersist.PersistenceManager
}

// SchemaReport records how many constraints were applied at startup.
type SchemaReport struct {
	Applied int
	Total   int
}

// StoreSet provides the database connection and the persistence layer.
var StoreSet = wire.NewSet(
	ProvideExecutor,
	ProvideMetrics,
	ProvideRunner,
	ProvidePersistenceManager,
)

// ServerSet provides everything between the persistence layer and the socket.
var ServerSet = wire.NewSet(
	StoreSet,
	ProvideSchema,
	ProvideModelOptions,
	ProvideUserMapper,
	ProvidePostMapper,
	ProvideCommentMapper,
	ProvideDatabase,
	httpapi.NewHandler,
	ProvideRouter,
	ProvideServer,
	wire.Bind(new(httpapi.UserStore), new(*models.UserMapper)),
	wire.Bind(new(httpapi.PostStore), new(*models.PostMapper)),
	wire.Bind(new(httpapi.CommentStore), new(*models.CommentMapper)),
	wire.Struct(new(Container), "*"),
)

// ProvideExecutor opens the Neo4j driver. The returned cleanup closes it.
func ProvideExecutor(cfg *config.Config, logger *zap.Logger) (*neopersist.Neo4jExecutor, func(), error) {
	exec, err := neopersist.NewNeo4jExecutor(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := exec.Close(ctx); err != nil {
			logger.Warn("failed to close Neo4j driver", zap.Error(err))
		}
	}
	return exec, cleanup, nil
}

// ProvideMetrics returns the collector, or nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config) *metrics.Collector {
	if !cfg.MetricsEnabled {
		return nil
	}
	return metrics.NewCollector("neosocial")
}

// ProvideRunner instruments the executor when a collector is present.
func ProvideRunner(exec *neopersist.Neo4jExecutor, collector *metrics.Collector) neopersist.DBRunner {
	if collector == nil {
		return exec
	}
	return metrics.NewInstrumentedRunner(exec, collector)
}

func ProvidePersistenceManager(runner neopersist.DBRunner) *neopersist.PersistenceManager {
	return neopersist.NewPersistenceManager(runner)
}

// ProvideSchema ensures the uniqueness constraints. Failures are logged and
// do not stop the server.
func ProvideSchema(ctx context.Context, runner neopersist.DBRunner, logger *zap.Logger) SchemaReport {
	constraints := models.Constraints()
	applied := neopersist.EnsureConstraints(ctx, runner, logger, constraints...)
	logger.Info("schema constraints ensured",
		zap.Int("applied", applied),
		zap.Int("total", len(constraints)),
	)
	return SchemaReport{Applied: applied, Total: len(constraints)}
}

// ProvideModelOptions selects the id generator configured by id_format.
func ProvideModelOptions(cfg *config.Config) ([]models.Option, error) {
	gen, err := models.IDGeneratorFor(cfg.IDFormat)
	if err != nil {
		return nil, err
	}
	return []models.Option{models.WithIDGenerator(gen)}, nil
}

func ProvideUserMapper(pm *neopersist.PersistenceManager, opts []models.Option) (*models.UserMapper, error) {
	return models.NewUserMapper(pm, opts...)
}

func ProvidePostMapper(pm *neopersist.PersistenceManager, opts []models.Option) (*models.PostMapper, error) {
	return models.NewPostMapper(pm, opts...)
}

func ProvideCommentMapper(pm *neopersist.PersistenceManager, opts []models.Option) (*models.CommentMapper, error) {
	return models.NewCommentMapper(pm, opts...)
}

// dbProbe answers the health and test-db routes.
type dbProbe struct {
	pm   *neopersist.PersistenceManager
	exec *neopersist.Neo4jExecutor
}

func (p dbProbe) CountNodes(ctx context.Context) (int64, error) { return p.pm.CountNodes(ctx) }
func (p dbProbe) Verify(ctx context.Context) error              { return p.exec.Verify(ctx) }

func ProvideDatabase(pm *neopersist.PersistenceManager, exec *neopersist.Neo4jExecutor) httpapi.Database {
	return dbProbe{pm: pm, exec: exec}
}

func ProvideRouter(h *httpapi.Handler, cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) http.Handler {
	return httpapi.NewRouter(h, httpapi.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        collector,
	}, logger)
}

func ProvideServer(cfg *config.Config, router http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"winesearcher/parser/internal/checkpoint"
	"winesearcher/parser/internal/client"
	"winesearcher/parser/internal/config"
	"winesearcher/parser/internal/metrics"
	"winesearcher/parser/internal/parser"
	"winesearcher/parser/internal/proxy"
	"winesearcher/parser/internal/repository"
	"winesearcher/parser/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.WineSearcherClient
	Parser     *parser.WineParser
	Checkpoint checkpoint.Store
	Repository repository.WineRepository
	Metrics    *metrics.Metrics

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Metrics: metrics.New(),
	}

	var proxySupplier proxy.Supplier
	if cfg.Proxy.Enabled {
		supplier, err := proxy.NewSupplierFromProvider(
			context.Background(),
			cfg.Proxy.ProviderURL,
			cfg.Proxy.PoolSize,
			cfg.WineSearcher.BaseURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
		}
		proxySupplier = supplier
	} else {
		proxySupplier = proxy.Static(nil)
	}

	container.Client = client.NewWineSearcherClient(
		cfg.WineSearcher,
		client.PolicyFromConfig(cfg.WineSearcher),
		proxySupplier,
		container.Metrics,
	)
	container.Parser = parser.NewWineParser(cfg.WineSearcher.BaseURL)

	switch cfg.Checkpoint.Store {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")
		container.redis = rdb
		container.Checkpoint = checkpoint.NewRedisStore(rdb, cfg.Checkpoint.Key)
	default:
		store, err := checkpoint.NewCSVStore(cfg.Checkpoint.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
		}
		container.Checkpoint = store
	}

	if cfg.Database.Enabled {
		db, err := pgxpool.New(context.Background(),
			fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				cfg.Database.Host,
				cfg.Database.Port,
				cfg.Database.User,
				cfg.Database.Password,
				cfg.Database.Name,
			))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		container.db = db
		container.Repository = repository.NewWineRepository(db)
	}

	container.Service = service.NewService(
		container.Client,
		container.Parser,
		container.Checkpoint,
		container.Repository,
		container.Metrics,
		cfg.WineSearcher.BatchSize,
		time.Duration(cfg.WineSearcher.BatchDelay)*time.Second,
	)

	return container, nil
}

// Run processes the query list at inputPath, serving metrics alongside when
// configured.
func (c *Container) Run(ctx context.Context, inputPath string) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, runCtx := errgroup.WithContext(runCtx)

	if addr := c.Config.Metrics.Addr; addr != "" {
		server := &http.Server{Addr: addr, Handler: c.Metrics.Handler()}

		g.Go(func() error {
			log.Infof("📊 Serving metrics on %s", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-runCtx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()

		results, err := c.Service.ProcessWineListFile(runCtx, inputPath)
		if err != nil {
			return err
		}

		found := 0
		for _, wine := range results {
			if wine != nil {
				found++
			}
		}
		log.Infof("✅ Processed %d queries, %d wines found", len(results), found)
		return nil
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	c.Service.FlushSink()

	if err := c.Checkpoint.Close(); err != nil {
		log.Errorf("❌ Failed to close checkpoint store: %v", err)
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		c.redis.Close()
	}

	log.Info("Container shut down successfully")
	return nil
}

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/redis/go-redis/v9"

	httpHandler "github.com/cosmeon/cosmeon/internal/api/adapter/inbound/http"
	"github.com/cosmeon/cosmeon/internal/api/adapter/outbound/catalog"
	"github.com/cosmeon/cosmeon/internal/api/adapter/outbound/encoder"
	"github.com/cosmeon/cosmeon/internal/api/adapter/outbound/nodestore"
	"github.com/cosmeon/cosmeon/internal/api/config"
	"github.com/cosmeon/cosmeon/internal/api/service"
	"github.com/cosmeon/cosmeon/pkg/idgen"
	"github.com/cosmeon/cosmeon/pkg/placement"
	"github.com/cosmeon/cosmeon/pkg/resilience"
)

type App struct {
	cfg    *config.Config
	server *httpHandler.Server
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	// 3. Redis-leased instance id and Snowflake IDGen
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	leaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	instanceID, err := idgen.AllocateInstanceID(leaseCtx, redisClient)
	if err != nil {
		// Redis is only the id lease; a standalone instance still works.
		logger.Warnw("Instance id lease failed, using instance 0", "error", err.Error())
		instanceID = 0
	}
	idGen, err := idgen.New(instanceID, idgen.NewRedisClock(redisClient))
	if err != nil {
		return nil, fmt.Errorf("failed to init snowflake: %w", err)
	}

	// 4. Placement ring over the configured fleet
	ring := placement.NewRing(placement.DefaultVirtualNodes)
	ring.SetNodes(cfg.Fleet.Nodes)

	// 5. Outbound adapters
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout())
	nodeStoreClient := nodestore.NewClient(cfg.NodeStore.BaseURL, cfg.NodeStore.Timeout())
	encoderClient := encoder.NewClient(cfg.Encoder.BaseURL, cfg.Encoder.Timeout())

	// 6. Services
	breakers := resilience.NewBreakerSet(resilience.BreakerConfig{
		Threshold: cfg.App.BreakerThreshold,
		Cooldown:  time.Duration(cfg.App.BreakerCooldownMS) * time.Millisecond,
	})
	clusterSvc := service.NewClusterService(cfg, nodeStoreClient, catalogClient, breakers)
	simSvc := service.NewSimulationService(clusterSvc.KnownNode, clusterSvc.Invalidate)
	clusterSvc.BindSimulation(simSvc)
	fileSvc := service.NewFileService(cfg, catalogClient, nodeStoreClient, encoderClient, clusterSvc, simSvc, ring, idGen)

	// 7. HTTP Server
	httpServer := httpHandler.NewServer(cfg, clusterSvc, simSvc, fileSvc)

	return &App{
		cfg:    cfg,
		server: httpServer,
	}, nil
}

func (a *App) Run() error {
	logger.Infow("Storage control API starting", "addr", a.cfg.Server.Addr)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		runErr = fmt.Errorf("http server failed: %w", err)
		logger.Errorw("API server exited unexpectedly", "error", err.Error())
	}

	logger.Info("Shutting down API services")
	if err := a.server.Stop(context.Background()); err != nil {
		logger.Errorw("API shutdown error", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}

	return runErr
}

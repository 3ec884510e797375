package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/ticketrail/settlement/internal/adapters/cache"
	eventadapter "github.com/ticketrail/settlement/internal/adapters/events"
	grpcadapter "github.com/ticketrail/settlement/internal/adapters/grpc"
	httpadapter "github.com/ticketrail/settlement/internal/adapters/http"
	"github.com/ticketrail/settlement/internal/adapters/memory"
	"github.com/ticketrail/settlement/internal/adapters/postgres"
	"github.com/ticketrail/settlement/internal/adapters/security"
	"github.com/ticketrail/settlement/internal/application"
	"github.com/ticketrail/settlement/internal/domain"
	"github.com/ticketrail/settlement/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping settlement engine", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	cleanups := make([]func(), 0, 4)
	cleanup := func(context.Context) {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Runtime, error) {
		cleanup(ctx)
		return nil, err
	}

	var (
		escrowRepo ports.EscrowRepository
		poolRepo   ports.PoolRepository
		authzRepo  ports.AuthorizationRepository
		feesRepo   ports.FeeConfigRepository
		outboxRepo ports.OutboxRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fail(fmt.Errorf("gorm sql db: %w", err))
		}
		cleanups = append(cleanups, func() { _ = sqlDB.Close() })
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return fail(fmt.Errorf("run migrations: %w", err))
		}
		repos := postgres.NewRepositories(db)
		escrowRepo, poolRepo, authzRepo, feesRepo, outboxRepo = repos.Escrow, repos.Pool, repos.Authz, repos.Fees, repos.Outbox
	} else {
		logger.Warn("no database configured, using in-memory repositories")
		repos := memory.NewRepositories()
		escrowRepo, poolRepo, authzRepo, feesRepo, outboxRepo = repos.Escrow, repos.Pool, repos.Authz, repos.Fees, repos.Outbox
	}

	var locks ports.SaleLocker
	if cfg.RedisURL != "" {
		redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fail(fmt.Errorf("connect redis: %w", err))
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("ping redis: %w", err))
		}
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		locks = cacheadapter.NewRedisSaleLocker(redisClient, cfg.LockTTL)
	} else {
		logger.Warn("no redis configured, using process-local sale locks")
		locks = memory.NewKeyedLocker()
	}

	var domainEvents ports.DomainPublisher
	var analytics ports.AnalyticsPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, nil)
		if err != nil {
			return fail(fmt.Errorf("init kafka publisher: %w", err))
		}
		cleanups = append(cleanups, func() { _ = publisher.Close() })
		domainEvents, analytics = publisher, publisher
	} else {
		logger.Warn("no kafka brokers configured, audit events go to the log")
		publisher := eventadapter.NewLoggingPublisher(logger)
		domainEvents, analytics = publisher, publisher
	}

	var registry ports.TicketRegistry
	if cfg.RegistryEndpoint != "" {
		client, err := grpcadapter.NewTicketRegistryClient(cfg.RegistryEndpoint)
		if err != nil {
			return fail(fmt.Errorf("init registry client: %w", err))
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		registry = client
	} else {
		logger.Warn("no registry endpoint configured, treating all tickets as anchored")
		registry = memory.NewStaticTicketRegistry()
	}

	var revocation ports.RevocationAuthority
	if cfg.RevocationEndpoint != "" {
		client, err := grpcadapter.NewRevocationAuthorityClient(cfg.RevocationEndpoint)
		if err != nil {
			return fail(fmt.Errorf("init revocation client: %w", err))
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		revocation = client
	} else {
		logger.Warn("no revocation endpoint configured, treating all tickets as unrevoked")
		revocation = memory.NewStaticRevocationAuthority()
	}

	var transferor ports.FundsTransferor
	if cfg.TreasuryEndpoint != "" {
		client, err := grpcadapter.NewTreasuryClient(cfg.TreasuryEndpoint)
		if err != nil {
			return fail(fmt.Errorf("init treasury client: %w", err))
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		transferor = client
	} else {
		logger.Warn("no treasury endpoint configured, recording transfers in memory")
		transferor = memory.NewLedgerTransferor()
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:          cfg.ServiceID,
			Owner:                domain.MustParseAddress(cfg.OwnerAddress),
			OutboxFlushBatchSize: cfg.OutboxBatchSize,
		},
		Escrow:       escrowRepo,
		Pool:         poolRepo,
		Authz:        authzRepo,
		Fees:         feesRepo,
		Outbox:       outboxRepo,
		Registry:     registry,
		Revocation:   revocation,
		Transferor:   transferor,
		Locks:        locks,
		DomainEvents: domainEvents,
		Analytics:    analytics,
	})

	if err := seedFeeConfig(ctx, cfg, feesRepo); err != nil {
		return fail(fmt.Errorf("seed fee config: %w", err))
	}

	verifier, err := security.NewPrincipalVerifier(cfg.JWTSecret)
	if err != nil {
		return fail(fmt.Errorf("init principal verifier: %w", err))
	}

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler, verifier)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(grpcServer, grpcadapter.NewSettlementInternalServer(svc))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fail(fmt.Errorf("listen gRPC: %w", err))
	}

	outbox := eventadapter.NewOutboxWorker(logger, svc, cfg.OutboxPollInterval)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		cleanupFn:  cleanup,
	}, nil
}

// seedFeeConfig installs the configured fee schedule when the store is
// empty. An existing schedule set through the owner API always wins.
func seedFeeConfig(ctx context.Context, cfg Config, fees ports.FeeConfigRepository) error {
	if _, err := fees.Get(ctx); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	seeded := domain.FeeConfig{ObolBps: cfg.ObolBps, ProtectBps: cfg.ProtectBps}
	if cfg.FoundationAddress != "" {
		seeded.FoundationAddress = domain.MustParseAddress(cfg.FoundationAddress)
	}
	if err := seeded.Validate(); err != nil {
		return err
	}
	return fees.Set(ctx, seeded, time.Now().UTC())
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}

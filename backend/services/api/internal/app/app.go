package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "github.com/AttriPardeep/VoltStartEV-Backend/backend/libs/redis"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/config"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/db"
	httpserver "github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/handlers"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/middleware"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/metrics"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/notify"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/ocpp"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/otp"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/payment"
	redisstore "github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/redis"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/repository"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

const otpSweepInterval = time.Minute

// App wires API dependencies.
type App struct {
	server      *httpserver.Server
	handler     http.Handler
	db          *sql.DB
	redisClient *redis.Client
	limiter     *middleware.RateLimiter
	memoryOTP   *otp.MemoryStore
	logger      *zap.Logger
}

// New constructs the application graph against the SteVe database (MySQL or PostgreSQL) and, when configured, Redis.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dialect, err := repository.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.Open(ctx, string(dialect), cfg.DatabaseDSN(), cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, err
	}

	if cfg.Database.RunMigrations {
		if err := db.Migrate(ctx, sqlDB, string(dialect)); err != nil {
			sqlDB.Close()
			return nil, err
		}
		logger.Info("migrations applied", zap.String("dialect", string(dialect)))
	}

	var (
		redisClient *redis.Client
		store       service.OTPStore
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewRedisClient(ctx, libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		store = redisstore.NewOTPStore(redisClient)
	}

	a := assemble(cfg, sqlDB, dialect, store, logger)
	a.redisClient = redisClient
	return a, nil
}

// assemble builds services and routes over an open database. A nil store selects the in-process OTP store.
func assemble(cfg *config.Config, sqlDB *sql.DB, dialect repository.Dialect, store service.OTPStore, logger *zap.Logger) *App {
	a := &App{db: sqlDB, logger: logger}
	if store == nil {
		a.memoryOTP = otp.NewMemoryStore()
		store = a.memoryOTP
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	repoDB := repository.NewDB(sqlDB, dialect, cfg.QueryTimeout())
	chargerRepo := repository.NewChargerRepository(repoDB)
	transactionRepo := repository.NewTransactionRepository(repoDB)
	tagRepo := repository.NewTagRepository(repoDB)
	userRepo := repository.NewUserRepository(repoDB)
	walletRepo := repository.NewWalletRepository(repoDB)

	dev := cfg.IsDevelopment()
	tariff := service.NewTariffService(cfg.Tariff.RatePerUnit, cfg.Tariff.Currency)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	otpSvc := service.NewOTPService(store, notify.NewLogSender(logger, dev), service.OTPOptions{
		Length:      cfg.OTP.Length,
		TTL:         cfg.OTPTTL(),
		MaxAttempts: cfg.OTP.MaxAttempts,
		DevCode:     cfg.OTP.DevCode,
		Development: dev,
	}, collector, logger)
	tags := service.NewTagService(tagRepo, collector, logger)
	authSvc := service.NewAuthService(otpSvc, userRepo, tags, tokens, logger)
	chargerSvc := service.NewChargerService(chargerRepo, tariff, logger)
	historySvc := service.NewHistoryService(transactionRepo, tariff, logger)
	userSvc := service.NewUserService(userRepo, chargerSvc, logger)
	walletSvc := service.NewWalletService(walletRepo, userRepo, payment.NewMockGateway(logger), tariff, logger)
	sessionSvc := service.NewSessionService(chargerSvc, transactionRepo, ocpp.NewMockCommander(logger), logger)

	a.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Window:      cfg.RateLimitWindow(),
		MaxRequests: cfg.RateLimit.MaxRequests,
	}, logger)

	a.handler = httpserver.NewRouter(httpserver.RouterDeps{
		Auth:         handlers.NewAuthHandlers(authSvc, logger),
		Chargers:     handlers.NewChargerHandlers(chargerSvc, userSvc, logger),
		Sessions:     handlers.NewSessionHandlers(sessionSvc, historySvc, logger),
		Wallet:       handlers.NewWalletHandlers(walletSvc, logger),
		Users:        handlers.NewUserHandlers(userSvc, logger),
		Health:       handlers.NewHealthHandler(repoDB, cfg.Env, time.Now()),
		Metrics:      metrics.Handler(registry),
		Tokens:       tokens,
		RateLimiter:  a.limiter,
		Recorder:     collector,
		Logger:       logger,
		CORSOrigins:  cfg.CORS.Origins,
		BodyLimit:    cfg.HTTP.BodyLimitBytes,
		ExposeErrors: dev,
	})
	a.server = httpserver.NewServer(cfg.HTTPAddress(), a.handler, logger)
	return a
}

// Handler returns the routed HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	if a.memoryOTP != nil {
		go a.memoryOTP.RunSweeper(ctx, otpSweepInterval)
	}
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mohith182/turbine-ai/internal/alerting"
	"github.com/mohith182/turbine-ai/internal/auth"
	"github.com/mohith182/turbine-ai/internal/config"
	"github.com/mohith182/turbine-ai/internal/cronrunner"
	"github.com/mohith182/turbine-ai/internal/dataset"
	"github.com/mohith182/turbine-ai/internal/fleet"
	"github.com/mohith182/turbine-ai/internal/handler"
	"github.com/mohith182/turbine-ai/internal/logger"
	"github.com/mohith182/turbine-ai/internal/metrics"
	"github.com/mohith182/turbine-ai/internal/otp"
	"github.com/mohith182/turbine-ai/internal/ratelimit"
	"github.com/mohith182/turbine-ai/internal/rul"
	"github.com/mohith182/turbine-ai/internal/stream"

	_ "github.com/mohith182/turbine-ai/docs"
)

func main() {
	cfgPath := os.Getenv("TURBINE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TURBINE_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	readings, err := dataset.Load(cfg.Dataset, time.Now())
	if err != nil {
		logger.Fatal("dataset load failed", zap.Error(err))
	}
	logger.Info("dataset loaded", zap.String("source", cfg.Dataset.Source), zap.Int("readings", len(readings)))

	repo, closeRepo, dbConn := openRepository(cfg, logger)
	defer closeRepo()

	redisClient := openRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	otpStore, err := openOTPStore(cfg, redisClient)
	if err != nil {
		logger.Fatal("otp store init failed", zap.Error(err))
	}

	dispatcher := newDispatcher(cfg, logger)
	dispatcher.Start()
	defer dispatcher.Close()

	otpSvc := otp.NewService(otpStore, dispatcher, otp.Options{
		TTL:         cfg.OTP.TTL,
		MaxAttempts: cfg.OTP.MaxAttempts,
		Digits:      cfg.OTP.CodeDigits,
		Logger:      logger,
	})
	directory := &auth.Directory{Repo: repo, Logger: logger}
	if err := directory.Seed(ctx, cfg.Auth.SeedUsers); err != nil {
		logger.Warn("seed identities failed", zap.Error(err))
	}
	tokens := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), TokenTTL: cfg.Auth.TokenTTL, Issuer: cfg.Auth.Issuer}
	authSvc := &auth.Service{OTP: otpSvc, Identities: directory, Tokens: tokens, Logger: logger}

	engine := rul.NewEngine()
	fleetSvc := fleet.New(engine, readings, nil)
	hub := stream.NewHub(logger, originHosts(cfg.Server.CORSOrigins))
	defer hub.Close()

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.Server.CORSOrigins))
	router.Use(metrics.GinMiddleware())

	requireAuth := auth.RequireBearer(tokens)
	healthHandler := &handler.HealthHandler{Model: engine}
	if dbConn != nil {
		healthHandler.DB = dbConn.Gorm
	}
	healthHandler.Register(router)
	handler.RegisterDocs(router)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(openCache(cfg, redisClient))
	}
	authHandler := &handler.AuthHandler{
		Auth:        authSvc,
		Limiter:     limiter,
		PerIdentity: ratelimit.Rule{Prefix: "otp:id:", Limit: int64(cfg.RateLimit.OTPPerIdentity), Window: cfg.RateLimit.Window},
		PerIP:       ratelimit.Rule{Prefix: "otp:ip:", Limit: int64(cfg.RateLimit.OTPPerIP), Window: cfg.RateLimit.Window},
		Logger:      logger,
	}
	authHandler.Register(router, requireAuth)
	fleetHandler := &handler.FleetHandler{Fleet: fleetSvc, Alerts: repo}
	fleetHandler.Register(router, requireAuth)
	predictHandler := &handler.PredictHandler{Model: engine, Repo: repo, Logger: logger}
	predictHandler.Register(router, requireAuth)
	streamHandler := &handler.StreamHandler{Hub: hub}
	streamHandler.Register(router, requireAuth)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	cronRunner := cronrunner.New(logger, ctx)
	if _, err := cronRunner.Add("otp_purge", cfg.OTP.PurgeSchedule, func(context.Context) {
		otpSvc.PurgeOnce(time.Now())
	}); err != nil {
		logger.Warn("add otp purge job failed", zap.Error(err))
	}
	scanner := &alerting.Scanner{
		Fleet:    fleetSvc,
		Repo:     repo,
		Hub:      hub,
		Notifier: dispatcher,
		Channels: cfg.Alerting.NotifyChannels,
		Logger:   logger,
	}
	if cfg.Alerting.Enabled {
		if _, err := cronRunner.Add("alert_scan", cfg.Alerting.Schedule, func(ctx context.Context) {
			if !engine.Ready() {
				return
			}
			scanner.Run(ctx)
		}); err != nil {
			logger.Warn("add alert scan job failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		model, err := rul.Train(gctx, dataset.Samples(readings), rul.TrainOptions{
			Forest: rul.ForestParams{
				NEstimators:     cfg.Model.NEstimators,
				MaxDepth:        cfg.Model.MaxDepth,
				MinSamplesSplit: cfg.Model.MinSamplesSplit,
				MaxFeatures:     cfg.Model.MaxFeatures,
				Seed:            cfg.Model.Seed,
			},
			TestSize: cfg.Model.TestSize,
			Seed:     cfg.Model.Seed,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("model training failed", zap.Error(err))
			return nil
		}
		engine.Load(model)
		metrics.ModelAccuracy.Set(model.HeldOutAccuracy)
		logger.Info("model trained",
			zap.Float64("r2", model.HeldOutAccuracy),
			zap.Int("dataset_size", model.DatasetSize),
			zap.Duration("took", time.Since(start)),
		)
		if cfg.Alerting.Enabled {
			scanner.Run(gctx)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// originHosts turns CORS origins into websocket origin patterns (host only).
func originHosts(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(strings.TrimPrefix(o, "https://"), "http://")
		o = strings.TrimRight(o, "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

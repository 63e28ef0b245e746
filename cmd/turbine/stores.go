package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mohith182/turbine-ai/internal/cache"
	"github.com/mohith182/turbine-ai/internal/config"
	"github.com/mohith182/turbine-ai/internal/db"
	"github.com/mohith182/turbine-ai/internal/notification"
	"github.com/mohith182/turbine-ai/internal/otp"
	"github.com/mohith182/turbine-ai/internal/repository"
	gormrepository "github.com/mohith182/turbine-ai/internal/repository/gorm"
	memoryrepository "github.com/mohith182/turbine-ai/internal/repository/memory"
)

// openRepository returns the postgres store when a DSN is configured and the
// in-memory store otherwise.
func openRepository(cfg config.Config, logger *zap.Logger) (repository.Repository, func(), *db.DB) {
	if cfg.DB.DSN == "" {
		logger.Info("db.dsn empty, using in-memory repository")
		return memoryrepository.New(), func() {}, nil
	}
	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}
	return gormrepository.New(dbConn.Gorm), func() { _ = db.Close(dbConn) }, dbConn
}

func openRedis(cfg config.Config) *redis.Client {
	if cfg.OTP.Store != "redis" && cfg.Cache.Backend != "redis" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func openOTPStore(cfg config.Config, rdb *redis.Client) (otp.Store, error) {
	switch cfg.OTP.Store {
	case "", "memory":
		return otp.NewMemoryStore(), nil
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, errors.New("otp.store=redis requires redis.addr")
		}
		return otp.NewRedisStore(rdb, cfg.Redis.Prefix), nil
	case "dynamodb":
		client, err := otp.NewDynamoClient(cfg.DynamoDB.Region, cfg.DynamoDB.Endpoint)
		if err != nil {
			return nil, err
		}
		return otp.NewDynamoStore(client, cfg.DynamoDB.Table), nil
	default:
		return nil, fmt.Errorf("unknown otp.store %q", cfg.OTP.Store)
	}
}

func openCache(cfg config.Config, rdb *redis.Client) cache.Store {
	if cfg.Cache.Backend == "redis" && rdb != nil && cfg.Redis.Addr != "" {
		return cache.NewRedisStore(rdb, cfg.Redis.Prefix+"rl:")
	}
	return cache.NewMemoryStore()
}

func newDispatcher(cfg config.Config, logger *zap.Logger) *notification.Dispatcher {
	d := notification.NewDispatcher(notification.DispatcherOptions{
		QueueSize:   cfg.Delivery.QueueSize,
		Workers:     cfg.Delivery.Workers,
		SendTimeout: cfg.Delivery.SendTimeout,
		Logger:      logger,
	})
	httpClient := &http.Client{Timeout: cfg.Delivery.SendTimeout}

	smtpSender := notification.SMTPSender{
		Host:     cfg.Delivery.SMTP.Host,
		Port:     cfg.Delivery.SMTP.Port,
		User:     cfg.Delivery.SMTP.User,
		Password: cfg.Delivery.SMTP.Password,
		From:     cfg.Delivery.SMTP.From,
	}
	if smtpSender.Configured() {
		d.Register(notification.ChannelEmail, smtpSender)
	} else {
		logger.Warn("smtp not configured, login codes go to the server log")
	}
	if cfg.Delivery.WebhookURL != "" {
		d.Register(notification.ChannelWebhook, notification.WebhookSender{
			URL:     cfg.Delivery.WebhookURL,
			Project: "turbine-ai",
			HTTP:    httpClient,
		})
	}
	if cfg.Delivery.Telegram.BotToken != "" && cfg.Delivery.Telegram.ChatID != "" {
		d.Register(notification.ChannelTelegram, notification.TelegramSender{
			BotToken: cfg.Delivery.Telegram.BotToken,
			ChatID:   cfg.Delivery.Telegram.ChatID,
			HTTP:     httpClient,
		})
	}
	return d
}

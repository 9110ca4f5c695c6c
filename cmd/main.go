package main

import (
	"context"
	"crypto/cipher"
	"encoding/base64"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ember-dating/match-service/internal/api"
	"github.com/ember-dating/match-service/internal/auth"
	"github.com/ember-dating/match-service/internal/config"
	"github.com/ember-dating/match-service/internal/crypto"
	"github.com/ember-dating/match-service/internal/events"
	"github.com/ember-dating/match-service/internal/kafka"
	"github.com/ember-dating/match-service/internal/presence"
	"github.com/ember-dating/match-service/internal/repository"
	"github.com/ember-dating/match-service/internal/service"
	"github.com/ember-dating/match-service/internal/utils"
	"github.com/ember-dating/match-service/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := utils.NewLogger(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	sugar := zlog.Sugar()

	mc, err := repository.NewMongoClient(cfg.Mongo.URI)
	if err != nil {
		log.Fatalf("mongo init: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	db := mc.Database(cfg.Mongo.DB)
	userRepo := repository.NewUserRepository(db)
	matchRepo := repository.NewMatchRepository(mc, db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	presenceStore := presence.NewStore(rdb, cfg.Redis.Prefix)

	var jv *auth.JWTValidator
	if strings.EqualFold(cfg.JWT.Alg, "RS256") {
		jv, err = auth.NewJWTValidatorRS256(cfg.JWT.PublicKeyPath)
	} else {
		jv, err = auth.NewJWTValidatorHS256(cfg.JWT.HSSecret)
	}
	if err != nil {
		log.Fatalf("jwt validator init: %v", err)
	}

	kprod := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	notifier := events.NewPublisher(kprod, sugar)

	wsrv := ws.NewServer(jv, presenceStore, cfg.PingInterval, cfg.WriteDeadline, cfg.WS.MaxMessageSizeBytes, sugar)

	// every instance consumes the whole events topic so each hub sees every
	// push addressed to one of its connected users
	groupID := cfg.Kafka.GroupID + "-" + hostSuffix()
	kcons := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, groupID, sugar)
	sub := events.NewSubscriber(wsrv, sugar)
	consumeCtx, stopConsume := context.WithCancel(context.Background())
	go kcons.Start(consumeCtx, sub.Handle)

	var aead cipher.AEAD
	if cfg.Chat.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.Chat.EncryptionKey)
		if err != nil {
			log.Fatalf("encryption key decode: %v", err)
		}
		aead, err = crypto.NewGCM(key)
		if err != nil {
			log.Fatalf("encryption init: %v", err)
		}
	}

	matchSvc := service.NewMatchService(userRepo, matchRepo, notifier, sugar)
	chatSvc := service.NewChatService(matchRepo, userRepo, notifier, aead, cfg.Chat.MaxMessageChars, cfg.Chat.HistoryLimit, sugar)
	profileSvc := service.NewProfileService(userRepo)

	app := api.NewServer(cfg, matchSvc, chatSvc, profileSvc, wsrv, jv, presenceStore)

	go func() {
		if err := app.Listen(":" + cfg.App.PortString()); err != nil {
			log.Fatalf("server listen: %v", err)
		}
	}()
	sugar.Infow("match-service started", "port", cfg.App.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = app.ShutdownWithContext(ctx)
	stopConsume()
	_ = kprod.Close(ctx)
	_ = kcons.Close()
	sugar.Info("match-service stopped")
}

func hostSuffix() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "local"
	}
	return h
}

package app

import (
	"fmt"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/authtoken"
	"github.com/yungbote/learnhub-backend/internal/platform/openai"
	"github.com/yungbote/learnhub-backend/internal/realtime/bus"
)

type Clients struct {
	OpenAI   openai.Client
	Verifier *authtoken.Verifier
	Feed     *docstore.Feed
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	ai, err := openai.NewClient(log, openai.ConfigFromEnv(log))
	if err != nil {
		return Clients{}, fmt.Errorf("init openai: %w", err)
	}
	verifier, err := authtoken.NewVerifier(cfg.JWTSecretKey)
	if err != nil {
		return Clients{}, fmt.Errorf("init token verifier: %w", err)
	}

	// Without Redis, change events only reach subscribers in this process.
	var b bus.Bus
	if cfg.RedisAddr != "" {
		b, err = bus.NewRedisBus(log, bus.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set, using in-process change feed")
	}

	return Clients{
		OpenAI:   ai,
		Verifier: verifier,
		Feed:     docstore.NewFeed(log, b),
	}, nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/groupforge/keystone/internal/catalog"
	"github.com/groupforge/keystone/internal/common/clock"
	"github.com/groupforge/keystone/internal/common/uuid"
	"github.com/groupforge/keystone/internal/handlers/discord"
	leaderboardRepo "github.com/groupforge/keystone/internal/repositories/leaderboard"
	sessionRepo "github.com/groupforge/keystone/internal/repositories/session"
	"github.com/groupforge/keystone/internal/services/group"
	"github.com/groupforge/keystone/internal/services/wizard"
)

type config struct {
	DiscordToken  string        `env:"DISCORD_TOKEN,required"`
	ApplicationID string        `env:"APPLICATION_ID"`
	GuildID       string        `env:"GUILD_ID"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	StepTimeout   time.Duration `env:"WIZARD_STEP_TIMEOUT" envDefault:"1m"`
	ReapInterval  time.Duration `env:"REAP_INTERVAL" envDefault:"1m"`
	MaxNoteLength int           `env:"MAX_NOTE_LENGTH" envDefault:"200"`
	Timezone      string        `env:"TIMEZONE" envDefault:"UTC"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	// A .env file is optional, real deployments set the environment
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to parse configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("failed to load timezone")
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	// Initialize repositories
	sessions, err := sessionRepo.NewMemory(&sessionRepo.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session repository")
	}

	leaderboard, err := leaderboardRepo.NewRedis(&leaderboardRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create leaderboard repository")
	}

	dungeons := catalog.Default()

	// Initialize services
	groupSvc, err := group.New(&group.Config{
		SessionRepo:      sessions,
		LeaderboardRepo:  leaderboard,
		Catalog:          dungeons,
		Clock:            clock.New(),
		Logger:           logger.With().Str("component", "group").Logger(),
		SessionTTL:       cfg.SessionTTL,
		Location:         location,
		MaxCommentLength: cfg.MaxNoteLength,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create group service")
	}

	wizardSvc, err := wizard.New(&wizard.Config{
		GroupService:     groupSvc,
		Catalog:          dungeons,
		Clock:            clock.New(),
		UUID:             uuid.New(),
		Logger:           logger.With().Str("component", "wizard").Logger(),
		StepTimeout:      cfg.StepTimeout,
		Location:         location,
		MaxCommentLength: cfg.MaxNoteLength,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create wizard service")
	}

	// Initialize Discord bot
	bot, err := discord.New(&discord.Config{
		Token:            cfg.DiscordToken,
		ApplicationID:    cfg.ApplicationID,
		GuildID:          cfg.GuildID,
		GroupService:     groupSvc,
		WizardService:    wizardSvc,
		Catalog:          dungeons,
		Logger:           logger.With().Str("component", "discord").Logger(),
		MaxCommentLength: cfg.MaxNoteLength,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create Discord bot")
	}

	// The reaper retires expired sessions and the bot cleans up their
	// channel messages
	reaper, err := group.NewReaper(&group.ReaperConfig{
		Service:   groupSvc,
		Interval:  cfg.ReapInterval,
		Logger:    logger.With().Str("component", "reaper").Logger(),
		OnRetired: bot.HandleRetired,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create reaper")
	}

	// Start the bot
	if err := bot.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start Discord bot")
	}

	reaper.Start()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	reaper.Stop()

	if err := bot.Stop(); err != nil {
		logger.Error().Err(err).Msg("error stopping bot")
	}

	logger.Info().Msg("bot has been shut down")
}

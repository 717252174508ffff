package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	hostsKeyPrefix        = "lfg:hosts:"
	participantsKeyPrefix = "lfg:participants:"
	namesKeyPrefix        = "lfg:names:"

	// defaultLimit bounds leaderboard reads when no limit is given
	defaultLimit = 5
)

// Config holds configuration for the Redis leaderboard repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed leaderboard repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// RecordHost credits a creator with one hosted run
func (r *redisRepository) RecordHost(ctx context.Context, input *RecordHostInput) error {
	if input == nil || input.GuildID == "" || input.PlayerID == "" {
		return errors.New("input, guild ID and player ID cannot be empty")
	}

	return r.increment(ctx, hostsKeyPrefix, input.GuildID, input.PlayerID, input.PlayerName)
}

// RecordParticipant credits a player with one joined run
func (r *redisRepository) RecordParticipant(ctx context.Context, input *RecordParticipantInput) error {
	if input == nil || input.GuildID == "" || input.PlayerID == "" {
		return errors.New("input, guild ID and player ID cannot be empty")
	}

	return r.increment(ctx, participantsKeyPrefix, input.GuildID, input.PlayerID, input.PlayerName)
}

// GetTopHosts returns the highest host tallies for a guild
func (r *redisRepository) GetTopHosts(ctx context.Context, input *GetTopHostsInput) (*GetTopHostsOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	entries, err := r.top(ctx, hostsKeyPrefix, input.GuildID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &GetTopHostsOutput{Entries: entries}, nil
}

// GetTopParticipants returns the highest participant tallies for a guild
func (r *redisRepository) GetTopParticipants(ctx context.Context, input *GetTopParticipantsInput) (*GetTopParticipantsOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	entries, err := r.top(ctx, participantsKeyPrefix, input.GuildID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &GetTopParticipantsOutput{Entries: entries}, nil
}

// increment bumps the player's tally and refreshes their display name
func (r *redisRepository) increment(ctx context.Context, prefix, guildID, playerID, playerName string) error {
	pipe := r.client.Pipeline()

	tallyKey := fmt.Sprintf("%s%s", prefix, guildID)
	pipe.ZIncrBy(ctx, tallyKey, 1, playerID)

	if playerName != "" {
		namesKey := fmt.Sprintf("%s%s", namesKeyPrefix, guildID)
		pipe.HSet(ctx, namesKey, playerID, playerName)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// top reads the highest tallies for a guild along with display names
func (r *redisRepository) top(ctx context.Context, prefix, guildID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	tallyKey := fmt.Sprintf("%s%s", prefix, guildID)
	scores, err := r.client.ZRevRangeWithScores(ctx, tallyKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if len(scores) == 0 {
		return []Entry{}, nil
	}

	namesKey := fmt.Sprintf("%s%s", namesKeyPrefix, guildID)
	names, err := r.client.HGetAll(ctx, namesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get player names: %w", err)
	}

	entries := make([]Entry, 0, len(scores))
	for _, z := range scores {
		playerID, ok := z.Member.(string)
		if !ok {
			continue
		}

		name := names[playerID]
		if name == "" {
			name = playerID
		}

		entries = append(entries, Entry{
			PlayerID:   playerID,
			PlayerName: name,
			Runs:       int(z.Score),
		})
	}

	return entries, nil
}

// Package cache keeps a read-through copy of public profiles in Redis.
// Cache failures are logged and treated as misses; they never fail a request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophprofile/internal/logging"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "profile:username:"

type ProfileCache interface {
	Get(ctx context.Context, username string) (*models.Profile, bool)
	Set(ctx context.Context, p *models.Profile)
	Invalidate(ctx context.Context, usernames ...string)
}

// NopProfileCache is used when Redis is not configured.
type NopProfileCache struct{}

func (NopProfileCache) Get(context.Context, string) (*models.Profile, bool) { return nil, false }
func (NopProfileCache) Set(context.Context, *models.Profile)                {}
func (NopProfileCache) Invalidate(context.Context, ...string)               {}

type RedisProfileCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger logging.Logger
}

func NewRedisProfileCache(client redis.Cmdable, ttl time.Duration, l logging.Logger) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl, logger: l.With("module", "profile_cache")}
}

func key(username string) string {
	return keyPrefix + username
}

func (c *RedisProfileCache) Get(ctx context.Context, username string) (*models.Profile, bool) {
	b, err := c.client.Get(ctx, key(username)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(ctx, "cache get failed", "error", err)
		}
		return nil, false
	}

	p, err := decode(b)
	if err != nil {
		c.logger.Warn(ctx, "cache entry undecodable", "error", err)
		return nil, false
	}
	return p, true
}

func (c *RedisProfileCache) Set(ctx context.Context, p *models.Profile) {
	b, err := encode(p)
	if err != nil {
		c.logger.Warn(ctx, "cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key(p.Username), b, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "cache set failed", "error", err)
	}
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, usernames ...string) {
	if len(usernames) == 0 {
		return
	}
	keys := make([]string, 0, len(usernames))
	for _, u := range usernames {
		keys = append(keys, key(u))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn(ctx, "cache invalidate failed", "error", err)
	}
}

type entry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	BirthDate      time.Time `json:"birth_date"`
	Gender         string    `json:"gender"`
	Status         *string   `json:"status,omitempty"`
	AvatarUploaded bool      `json:"avatar_uploaded"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func encode(p *models.Profile) ([]byte, error) {
	return json.Marshal(entry{
		ID:             p.ID,
		UserID:         p.UserID,
		Username:       p.Username,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		BirthDate:      p.BirthDate,
		Gender:         string(p.Gender),
		Status:         p.Status,
		AvatarUploaded: p.AvatarUploaded,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	})
}

func decode(b []byte) (*models.Profile, error) {
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &models.Profile{
		ID:             e.ID,
		UserID:         e.UserID,
		Username:       e.Username,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		BirthDate:      e.BirthDate,
		Gender:         models.Gender(e.Gender),
		Status:         e.Status,
		AvatarUploaded: e.AvatarUploaded,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}, nil
}

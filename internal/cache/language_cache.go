package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const languageTTL = 24 * time.Hour

// LanguageCache is a read-through cache for user language preferences,
// which are looked up on every inbound action. A nil *LanguageCache is
// valid and caches nothing, so Redis stays optional.
type LanguageCache struct {
	client *redis.Client
}

// New connects a language cache. Returns nil (cache disabled) when addr
// is empty or the server is unreachable.
func New(addr, password string, db int) *LanguageCache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable, language cache disabled: %v", err)
		return nil
	}
	log.Println("Connected to Redis")
	return &LanguageCache{client: client}
}

func languageKey(userID int64) string {
	return fmt.Sprintf("user:%d:language", userID)
}

// Get returns the cached language for the user, or "" on miss.
func (c *LanguageCache) Get(ctx context.Context, userID int64) string {
	if c == nil {
		return ""
	}
	lang, err := c.client.Get(ctx, languageKey(userID)).Result()
	if err != nil {
		return ""
	}
	return lang
}

// Set stores the user's language. Cache errors are logged, never
// surfaced.
func (c *LanguageCache) Set(ctx context.Context, userID int64, language string) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, languageKey(userID), language, languageTTL).Err(); err != nil {
		log.Printf("Failed to cache language for user %d: %v", userID, err)
	}
}

// Invalidate drops the cached language, forcing the next lookup through
// to Mongo.
func (c *LanguageCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, languageKey(userID)).Err(); err != nil {
		log.Printf("Failed to invalidate language for user %d: %v", userID, err)
	}
}

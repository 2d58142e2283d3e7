package session

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/merchantgate/internal/pkg/cache"
	"github.com/ManuelReschke/merchantgate/internal/pkg/env"
	"github.com/ManuelReschke/merchantgate/internal/pkg/usercontext"
)

// NewSessionStore builds the shared Redis-backed store. The dashboard that
// issues sessions writes user_id into the same store; this service only reads it.
func NewSessionStore() *session.Store {
	// Get Redis client configuration from existing cache setup
	cacheClient := cache.GetClient()
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	// Create Redis storage for sessions using database 1 (cache uses DB 0)
	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})

	return NewStore(storage)
}

// NewStore creates a session store on top of any fiber storage. Tests pass nil
// to get fiber's in-memory storage.
func NewStore(storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		CookieSecure:   env.GetEnvBool("SESSION_COOKIE_SECURE", !env.IsDev()),
		Expiration:     time.Hour * 1,
		KeyLookup:      "cookie:session_id",
	})
}

// GetUserID returns the user id stored in the caller's session, or 0.
func GetUserID(store *session.Store, c *fiber.Ctx) uint {
	if store == nil {
		return 0
	}
	sess, err := store.Get(c)
	if err != nil {
		return 0
	}
	switch v := sess.Get(usercontext.KeyUserID).(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	case uint64:
		return uint(v)
	case int64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

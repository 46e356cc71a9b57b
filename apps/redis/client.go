package redis

import (
	"context"
	"strings"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"
	"github.com/redis/go-redis/v9"
)

// Client is the universal Redis client that works with both single nodes and
// clusters. It backs the realtime presence sets; losing it only degrades the
// online-count display, never session or summary correctness.
var Client redis.UniversalClient

// Config holds the Redis configuration
type Config struct {
	Addresses    []string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

// Initialize creates a new Redis universal client connection
//
// Example config.yml for single node:
//
//	REDIS:
//	  ADDRESS: "localhost:6379"
//	  PASSWORD: ""
//	  DB: 0
//
// Example config.yml for cluster:
//
//	REDIS:
//	  ADDRESSES: "redis1:6379,redis2:6379,redis3:6379"
func Initialize() error {
	config := loadConfig()

	if len(config.Addresses) == 0 {
		log.Warning("Redis not configured, presence tracking will be disabled")
		return nil
	}

	Client = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        config.Addresses,
		Password:     config.Password,
		DB:           config.DB,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
	})

	testCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(testCtx).Err(); err != nil {
		// Presence is ephemeral and reconstructible, do not fail startup
		log.Warning("Redis connection failed: %v. Presence tracking will be disabled.", err)
		Client = nil
		return nil
	}

	log.Info("Redis connected (%d node(s))", len(config.Addresses))
	return nil
}

func loadConfig() Config {
	config := Config{
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	}

	addresses := settings.Get("REDIS.ADDRESSES").String()
	if addresses == "" {
		addresses = settings.Get("REDIS.ADDRESS").String()
	}
	for _, addr := range strings.Split(addresses, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			config.Addresses = append(config.Addresses, addr)
		}
	}

	config.Password = settings.Get("REDIS.PASSWORD").String()
	config.DB = settings.Get("REDIS.DB").Int()

	if poolSize := settings.Get("REDIS.POOL_SIZE").Int(); poolSize > 0 {
		config.PoolSize = poolSize
	}
	if minIdle := settings.Get("REDIS.MIN_IDLE_CONNS").Int(); minIdle > 0 {
		config.MinIdleConns = minIdle
	}

	return config
}

// IsAvailable returns true if the Redis client is connected
func IsAvailable() bool {
	if Client == nil {
		return false
	}
	return Client.Ping(context.Background()).Err() == nil
}

// Close gracefully closes the Redis connection
func Close() error {
	if Client != nil {
		return Client.Close()
	}
	return nil
}

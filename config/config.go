package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	apperr "funpay/lotworker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Scraper configuration
	BaseURL        string
	LotNodes       []int64
	MaxLotsPerNode int
	SortOrder      string // empty keeps document order
	CrawlInterval  time.Duration
	FetchBlockTime time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	maxLots, _ := strconv.Atoi(getEnv("MAX_LOTS_PER_NODE", "20"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "60"))
	blockTime, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "300"))

	return Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "lots"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		BaseURL:              getEnv("FUNPAY_BASE_URL", "https://funpay.com"),
		LotNodes:             parseNodes(getEnv("FUNPAY_LOT_NODES", "149")),
		MaxLotsPerNode:       maxLots,
		SortOrder:            getEnv("SORT_ORDER", ""),
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		FetchBlockTime:       time.Duration(blockTime) * time.Second,
		Environment:          getEnv("LOTWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the worker cannot run with
func (c *Config) Validate() error {
	if len(c.LotNodes) == 0 {
		return apperr.NewConfiguration("FUNPAY_LOT_NODES must list at least one numeric node id", nil)
	}
	if c.MaxLotsPerNode < 1 {
		return apperr.NewConfiguration("MAX_LOTS_PER_NODE must be positive", nil)
	}
	if c.RedisStreamCount < 1 {
		return apperr.NewConfiguration("REDIS_STREAM_COUNT must be a positive number", nil)
	}
	if c.RedisStreamMaxLength < 1 {
		return apperr.NewConfiguration("REDIS_STREAM_MAX_LENGTH must be a positive number", nil)
	}
	if c.SortOrder != "" && c.SortOrder != "lowest" && c.SortOrder != "highest" {
		return apperr.NewConfiguration("SORT_ORDER must be empty, 'lowest' or 'highest'", nil)
	}
	if c.CrawlInterval <= 0 {
		return apperr.NewConfiguration("CRAWL_INTERVAL_SECONDS must be positive", nil)
	}
	return nil
}

// parseNodes parses a comma-separated list of numeric node ids,
// skipping entries that are not numbers
func parseNodes(raw string) []int64 {
	var nodes []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		nodes = append(nodes, id)
	}
	return nodes
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

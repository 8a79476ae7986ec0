package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	AppName    = "Lexicon"
	AppVersion = "1.0.0"
)

type Config struct {
	Addr      string
	DBPath    string
	DataDir   string
	RedisURL  string
	ExportTTL time.Duration
	LogLevel  string
	NodeID    int64
	RateLimit float64
}

func Load() Config {
	addr := os.Getenv("LEXICON_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	dataDir := os.Getenv("LEXICON_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	path := os.Getenv("LEXICON_DB_PATH")
	if path == "" {
		path = filepath.Join(dataDir, "lexicon.db")
	}

	ttl := 300 * time.Second
	if raw := os.Getenv("LEXICON_EXPORT_TTL"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			ttl = time.Duration(seconds) * time.Second
		}
	}

	var nodeID int64
	if raw := os.Getenv("LEXICON_NODE_ID"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = parsed
		}
	}

	var rateLimit float64
	if raw := os.Getenv("LEXICON_RATE_LIMIT"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			rateLimit = parsed
		}
	}

	return Config{
		Addr:      addr,
		DBPath:    filepath.Clean(path),
		DataDir:   filepath.Clean(dataDir),
		RedisURL:  os.Getenv("LEXICON_REDIS_URL"),
		ExportTTL: ttl,
		LogLevel:  os.Getenv("LEXICON_LOG_LEVEL"),
		NodeID:    nodeID,
		RateLimit: rateLimit,
	}
}

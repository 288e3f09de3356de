package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`
	Quiz struct {
		// CorpusDir holds the raw question files for the ingest command.
		CorpusDir string `yaml:"corpus_dir"`
		// Encoding of corpus files: koi8-r (default) or utf-8.
		Encoding string `yaml:"encoding"`
		// FilesLimit caps how many corpus files ingestion scans; 0 scans all.
		FilesLimit int `yaml:"files_limit"`
		// QuestionsTotal overrides the stored bank size when > 0. Keep it in
		// sync with what ingestion wrote, or leave it at 0 to trust the store.
		QuestionsTotal int `yaml:"questions_total"`
		// CacheTTL bounds how long question lookups are served from memory.
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path. A missing file is not an error: secrets
// and addresses can come entirely from the environment (.env included).
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets the environment override the file for secrets and endpoints.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TG_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

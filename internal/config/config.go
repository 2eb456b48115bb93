package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv   string
	TZ       string
	HTTPAddr string

	DBDSN string

	OPBaseURL     string
	OPAPIKey      string
	OPAccessToken string

	HTTPTimeout time.Duration

	PageSize           int
	RelationProbeLimit int

	RulesFile string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" { return def }
	return v
}

func atoi(key string, def int) int {
	v := os.Getenv(key)
	if v == "" { return def }
	i, err := strconv.Atoi(v)
	if err != nil { return def }
	return i
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" { return def }
	d, err := time.ParseDuration(v)
	if err != nil { return def }
	return d
}

func Load() Config {
	cfg := Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		TZ:       getenv("APP_TZ", "UTC"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		DBDSN: getenv("DB_DSN", ""),

		OPBaseURL:     getenv("OPENPROJECT_BASE_URL", ""),
		OPAPIKey:      getenv("OPENPROJECT_API_KEY", ""),
		OPAccessToken: getenv("OPENPROJECT_ACCESS_TOKEN", ""),

		HTTPTimeout: dur("HTTP_TIMEOUT", 15*time.Second),

		PageSize:           atoi("FETCH_PAGE_SIZE", 500),
		RelationProbeLimit: atoi("RELATION_PROBE_LIMIT", 10),

		RulesFile: getenv("CLASSIFIER_RULES_FILE", ""),
	}

	// set global timezone if available
	if loc, err := time.LoadLocation(cfg.TZ); err == nil {
		time.Local = loc
	} else {
		log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
	}

	return cfg
}

// Package config loads the service settings from the environment.
//
// Values come from STOCKINFO_* variables. A .env file in the working
// directory is read first, without overriding variables already set.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable read by Load.
const Prefix = "STOCKINFO"

var newError = commons.NewTaggedWrapper("Config")

// Config holds every knob of the service.
type Config struct {
	Addr    string `envconfig:"ADDR" default:"127.0.0.1:5003"`
	GinMode string `envconfig:"GIN_MODE" default:"release"`

	// Stackdriver logging is used only when a project is given.
	GCPProject string `envconfig:"GCP_PROJECT"`
	LogName    string `envconfig:"LOG_NAME" default:"StockInfo"`

	ListingURL     string        `envconfig:"LISTING_URL" default:"http://kind.krx.co.kr/corpgeneral/corpList.do"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	// Roster freshness: entries expire after RosterTTL and are refreshed
	// every day at RosterRefreshHour (KST, fractional hours allowed).
	RosterTTL         time.Duration `envconfig:"ROSTER_TTL" default:"24h"`
	RosterRefreshHour float64       `envconfig:"ROSTER_REFRESH_HOUR" default:"5"`

	// A fetched price series is reused by the chart and downloads of a page.
	HistoryTTL time.Duration `envconfig:"HISTORY_TTL" default:"10m"`

	// Empty RedisAddr keeps the roster cache in memory.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	PriceProvider string  `envconfig:"PRICE_PROVIDER" default:"yahoo"`
	NaverURL      string  `envconfig:"NAVER_URL" default:"https://finance.naver.com/item/sise_day.naver"`
	NaverMaxPages int     `envconfig:"NAVER_MAX_PAGES" default:"100"`
	NaverRate     float64 `envconfig:"NAVER_RATE" default:"2"`

	// Empty Bucket disables publishing exports.
	Bucket string `envconfig:"BUCKET"`
}

// Load reads the given .env files (default: .env) and then the environment.
// Missing .env files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, newError(err, "failed to read "+f)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, newError(err, "")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values envconfig cannot check by itself.
func (c Config) Validate() error {
	switch {
	case c.RequestTimeout <= 0:
		return newError(nil, "request timeout must be positive")
	case c.RosterTTL <= 0:
		return newError(nil, "roster TTL must be positive")
	case c.HistoryTTL <= 0:
		return newError(nil, "history TTL must be positive")
	case c.RosterRefreshHour < 0 || c.RosterRefreshHour >= 24:
		return newError(nil, "roster refresh hour must be in [0, 24)")
	case c.NaverMaxPages <= 0:
		return newError(nil, "naver max pages must be positive")
	case c.NaverRate <= 0:
		return newError(nil, "naver rate must be positive")
	case c.PriceProvider != "yahoo" && c.PriceProvider != "naver":
		return newError(nil, "price provider must be yahoo or naver")
	}
	return nil
}

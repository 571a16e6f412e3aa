package module

import (
	"time"

	"github.com/go-playground/validator/v10"

	"ghcensus/internal/platform/config"
	"ghcensus/internal/platform/logger"
)

// Options holds configuration options for the ingest service
type Options struct {
	Batch      int           `validate:"gt=0"`
	MaxRetries int           `validate:"gte=1"`
	RetryBase  time.Duration `validate:"gte=0"`

	HourTimeout  time.Duration `validate:"gte=0"`
	FetchTimeout time.Duration `validate:"gte=0"`
	ReadTimeout  time.Duration `validate:"gte=0"`
	DBTimeout    time.Duration `validate:"gte=0"`

	// Remote fetch
	BaseURL     string `validate:"omitempty,url"`
	TmpDir      string
	HTTPTimeout time.Duration `validate:"gte=0"`
}

// FromConfig reads the ingest options from config with CORE_INGEST_ prefix
func FromConfig(cfg config.Conf) Options {
	in := cfg.Prefix("CORE_INGEST_")
	o := Options{
		Batch:        in.MayInt("BATCH", 1000),
		MaxRetries:   in.MayInt("RETRIES", 3),
		RetryBase:    in.MayDuration("RETRY_BASE", 250*time.Millisecond),
		HourTimeout:  in.MayDuration("HOUR_TIMEOUT", 0),
		FetchTimeout: in.MayDuration("FETCH_TIMEOUT", 10*time.Minute),
		ReadTimeout:  in.MayDuration("READ_TIMEOUT", 0),
		DBTimeout:    in.MayDuration("DB_TIMEOUT", 2*time.Minute),
		BaseURL:      in.MayString("BASE_URL", ""),
		TmpDir:       in.MayString("TMP_DIR", ""),
		HTTPTimeout:  in.MayDuration("HTTP_TIMEOUT", 15*time.Minute),
	}
	if err := validator.New().Struct(o); err != nil {
		logger.Get().Panic().Err(err).Msg("invalid ingest options")
	}
	return o
}

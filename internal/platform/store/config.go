package store

// Config aggregates per-backend configuration
type Config struct {
	AppName string

	PG PGConfig
}

// PGConfig configures postgres connectivity and query tracing
type PGConfig struct {
	Enabled  bool
	URL      string
	MaxConns int32

	// LogSQL governs whether the store logs every statement. The ingest job
	// exposes this as a run parameter so bulk loads can run quiet
	LogSQL      bool
	SlowQueryMs int
}

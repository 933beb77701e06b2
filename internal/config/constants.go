package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookcatalog.db"

	// DefaultEnvFile is loaded into the environment before viper reads it, when present
	DefaultEnvFile = ".env"
)

// Catalog defaults
const (
	DefaultPageSize      = 10
	DefaultSeedBookCount = 25
)

package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 9002
	defaultEnv        = "development"
	defaultLogDir     = "logs"

	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "healthconnect"
	defaultDBCharset  = "utf8mb4"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379

	defaultAITimeout         = 30 * time.Second
	defaultAIMaxOutputTokens = 512
	defaultSurfaceTTL        = 30 * time.Minute
	defaultSummaryRatePerMin = 10
)

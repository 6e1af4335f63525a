package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets and connection settings are required;
// everything else falls back to a default suitable for local development.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	LogLevel     string // zap level name (debug, info, warn, error)
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	DBMigrate    bool   // apply the embedded schema on startup
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	CORSOrigins  string // comma separated list of allowed origins ("*" allows all)
}

// IsDev reports whether the service runs in development mode.  Development
// mode exposes internal error causes in API responses.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first if it exists;
// real environment variables take precedence over it.
func Load() Config {
	_ = godotenv.Load() // missing .env is not an error

	return Config{
		Env:          envStr("APP_ENV", "dev"),
		Port:         envStr("APP_PORT", "5000"),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       envStr("DB_PORT", "3306"),
		DBName:       must("DB_NAME"),
		DBMigrate:    envBool("DB_MIGRATE", true),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustIntOr("ACCESS_TOKEN_TTL_MIN", 24*60), // tokens live for a day
		BcryptCost:   mustIntOr("BCRYPT_COST", 10),
		CORSOrigins:  envStr("CORS_ORIGINS", "*"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustIntOr returns def when key is unset and exits when it is set to
// something that is not an integer.
func mustIntOr(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

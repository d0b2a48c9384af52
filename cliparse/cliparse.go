package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/danielhkuo/scoreboard/db"
)

// EnvPrefix prefixes every environment variable read by ParseFlags.
const EnvPrefix = "LEADERBOARD_"

var (
	ErrMissingDatabaseURL  = errors.New("database URL required (use -d or DATABASE_URL env)")
	ErrMissingIdentitySalt = errors.New("IDENTITY_SALT required")
	ErrInvalidConfig       = errors.New("invalid config")
)

type Config struct {
	Port           int    `koanf:"port"`
	DatabaseURL    string `koanf:"database_url"`
	DatabaseType   string `koanf:"database_type"`
	IdentitySalt   string `koanf:"identity_salt"`
	LogLevel       string `koanf:"log_level"`
	MetricsEnabled bool   `koanf:"metrics_enabled"`
	Seed           bool   `koanf:"seed"`

	// Bootstrap administrator, created at startup when a password is set.
	AdminUsername string `koanf:"admin_username"`
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Port:           3318,
		DatabaseType:   "sqlite",
		LogLevel:       "info",
		MetricsEnabled: true,
		AdminUsername:  "admin",
		AdminEmail:     "admin@localhost",
	}
}

// legacyEnv maps the unprefixed variables kept for existing deployments.
var legacyEnv = map[string]string{
	"PORT":          "port",
	"DATABASE_URL":  "database_url",
	"DATABASE_TYPE": "database_type",
	"IDENTITY_SALT": "identity_salt",
	"LOG_LEVEL":     "log_level",
}

// ParseFlags builds the configuration. Precedence, low to high: defaults,
// YAML file (-c or LEADERBOARD_CONFIG), .env file, environment, flags.
func ParseFlags(args []string) (Config, error) {
	var (
		flagCfg    Config
		configPath string
		envFile    string
	)

	fset := flag.NewFlagSet("scoreboard", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fset.IntVar(&flagCfg.Port, "p", 0, "Server port")
	fset.StringVar(&flagCfg.DatabaseURL, "d", "", "Database URL")
	fset.StringVar(&flagCfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&flagCfg.IdentitySalt, "identity-salt", "", "Identity key salt (prefer env)")
	fset.StringVar(&flagCfg.AdminPassword, "admin-password", "", "Bootstrap admin password (prefer env)")

	fset.StringVar(&flagCfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fset.BoolVar(&flagCfg.MetricsEnabled, "metrics", true, "Expose Prometheus metrics at /metrics")
	fset.BoolVar(&flagCfg.Seed, "seed", false, "Load demo data on startup")
	fset.StringVar(&configPath, "c", "", "YAML config file")
	fset.StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: load %s: %v", ErrInvalidConfig, envFile, err)
	}

	k := koanf.New(".")

	if configPath == "" {
		configPath = os.Getenv(EnvPrefix + "CONFIG")
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("%w: load %s: %v", ErrInvalidConfig, configPath, err)
		}
	}

	legacy := env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	})
	if err := k.Load(legacy, nil); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// LEADERBOARD_DATABASE_URL -> database_url
	prefixed := env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if key == "config" {
			return ""
		}
		return key
	})
	if err := k.Load(prefixed, nil); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// Only flags given on the command line override the layers above
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = flagCfg.Port
		case "d":
			cfg.DatabaseURL = flagCfg.DatabaseURL
		case "t":
			cfg.DatabaseType = flagCfg.DatabaseType
		case "identity-salt":
			cfg.IdentitySalt = flagCfg.IdentitySalt
		case "admin-password":
			cfg.AdminPassword = flagCfg.AdminPassword
		case "log-level":
			cfg.LogLevel = flagCfg.LogLevel
		case "metrics":
			cfg.MetricsEnabled = flagCfg.MetricsEnabled
		case "seed":
			cfg.Seed = flagCfg.Seed
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required values and enumerations.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if _, err := db.ParseDialect(c.DatabaseType); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.IdentitySalt == "" {
		return ErrMissingIdentitySalt
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

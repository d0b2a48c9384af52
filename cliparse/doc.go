// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Postgres connection string or SQLite file (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - IdentitySalt: Secret for identity key HMAC (required)
  - LogLevel: debug, info, warn or error (default: info)
  - MetricsEnabled: Serve /metrics (default: true)
  - Seed: Load demo data at startup
  - AdminUsername, AdminEmail, AdminPassword: Bootstrap administrator

# Sources

Later sources win:

 1. Defaults()
 2. YAML file from -c or LEADERBOARD_CONFIG
 3. .env file (-env-file, default .env); never overrides the environment
 4. Environment: PORT, DATABASE_URL, DATABASE_TYPE, IDENTITY_SALT, LOG_LEVEL,
    then any field as LEADERBOARD_<FIELD>, e.g. LEADERBOARD_METRICS_ENABLED
 5. Flags given on the command line

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-identity-salt   Identity key salt
	-admin-password  Bootstrap admin password
	-log-level       Log level
	-metrics         Serve /metrics
	-seed            Load demo data
	-c               YAML config file
	-env-file        dotenv file

# Validation

ParseFlags returns ErrMissingDatabaseURL or ErrMissingIdentitySalt when a
required value is missing, and an error wrapping ErrInvalidConfig for
anything malformed.
*/
package cliparse

// cliparse/cliparse_test.go
package cliparse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// clearEnv blanks every variable ParseFlags reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for name := range legacyEnv {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	for _, key := range []string{"CONFIG", "PORT", "DATABASE_URL", "DATABASE_TYPE", "IDENTITY_SALT",
		"LOG_LEVEL", "METRICS_ENABLED", "SEED", "ADMIN_USERNAME", "ADMIN_EMAIL", "ADMIN_PASSWORD"} {
		t.Setenv(EnvPrefix+key, "")
		os.Unsetenv(EnvPrefix + key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("IDENTITY_SALT", "test-salt")

	Convey("Given only the legacy environment variables", t, func() {
		cfg, err := ParseFlags([]string{"-env-file", "does-not-exist.env"})

		So(err, ShouldBeNil)
		So(cfg.Port, ShouldEqual, 9000)
		So(cfg.DatabaseURL, ShouldEqual, "postgres://test")
		So(cfg.DatabaseType, ShouldEqual, "postgres")
		So(cfg.IdentitySalt, ShouldEqual, "test-salt")

		Convey("Defaults fill the rest", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.MetricsEnabled, ShouldBeTrue)
			So(cfg.Seed, ShouldBeFalse)
			So(cfg.AdminUsername, ShouldEqual, "admin")
		})
	})
}

func TestParseFlags_Precedence(t *testing.T) {
	clearEnv(t)
	yamlPath := writeFile(t, "config.yaml", `
port: 7000
database_url: "file:from-yaml.db"
identity_salt: yaml-salt
log_level: debug
metrics_enabled: false
`)

	Convey("Given a YAML config file", t, func() {
		Convey("When nothing else is set", func() {
			cfg, err := ParseFlags([]string{"-c", yamlPath, "-env-file", "none.env"})

			So(err, ShouldBeNil)
			So(cfg.Port, ShouldEqual, 7000)
			So(cfg.DatabaseURL, ShouldEqual, "file:from-yaml.db")
			So(cfg.IdentitySalt, ShouldEqual, "yaml-salt")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.MetricsEnabled, ShouldBeFalse)
			So(cfg.DatabaseType, ShouldEqual, "sqlite")
		})

		Convey("When prefixed env vars are set they override the file", func() {
			t.Setenv(EnvPrefix+"PORT", "7100")
			t.Setenv(EnvPrefix+"METRICS_ENABLED", "true")
			defer os.Unsetenv(EnvPrefix + "PORT")
			defer os.Unsetenv(EnvPrefix + "METRICS_ENABLED")

			cfg, err := ParseFlags([]string{"-c", yamlPath, "-env-file", "none.env"})

			So(err, ShouldBeNil)
			So(cfg.Port, ShouldEqual, 7100)
			So(cfg.MetricsEnabled, ShouldBeTrue)
			So(cfg.IdentitySalt, ShouldEqual, "yaml-salt")
		})

		Convey("When flags are given they override everything", func() {
			t.Setenv(EnvPrefix+"PORT", "7100")
			defer os.Unsetenv(EnvPrefix + "PORT")

			cfg, err := ParseFlags([]string{"-c", yamlPath, "-env-file", "none.env",
				"-p", "8080", "-d", "file:flag.db", "-identity-salt", "flag-salt", "-seed"})

			So(err, ShouldBeNil)
			So(cfg.Port, ShouldEqual, 8080)
			So(cfg.DatabaseURL, ShouldEqual, "file:flag.db")
			So(cfg.IdentitySalt, ShouldEqual, "flag-salt")
			So(cfg.Seed, ShouldBeTrue)
			So(cfg.LogLevel, ShouldEqual, "debug")
		})
	})
}

func TestParseFlags_DotEnv(t *testing.T) {
	clearEnv(t)
	envPath := writeFile(t, "test.env", "DATABASE_URL=file:dotenv.db\nIDENTITY_SALT=dotenv-salt\n")

	Convey("Given a .env file", t, func() {
		cfg, err := ParseFlags([]string{"-env-file", envPath})
		defer os.Unsetenv("DATABASE_URL")
		defer os.Unsetenv("IDENTITY_SALT")

		So(err, ShouldBeNil)
		So(cfg.DatabaseURL, ShouldEqual, "file:dotenv.db")
		So(cfg.IdentitySalt, ShouldEqual, "dotenv-salt")
	})
}

func TestParseFlags_Validation(t *testing.T) {
	clearEnv(t)

	Convey("Given incomplete configuration", t, func() {
		Convey("A missing database URL is rejected", func() {
			_, err := ParseFlags([]string{"-env-file", "none.env", "-identity-salt", "s"})
			So(errors.Is(err, ErrMissingDatabaseURL), ShouldBeTrue)
		})

		Convey("A missing identity salt is rejected", func() {
			_, err := ParseFlags([]string{"-env-file", "none.env", "-d", "file:x.db"})
			So(errors.Is(err, ErrMissingIdentitySalt), ShouldBeTrue)
		})

		Convey("An unknown database type is rejected", func() {
			_, err := ParseFlags([]string{"-env-file", "none.env", "-d", "file:x.db", "-identity-salt", "s", "-t", "oracle"})
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("An unknown log level is rejected", func() {
			_, err := ParseFlags([]string{"-env-file", "none.env", "-d", "file:x.db", "-identity-salt", "s", "-log-level", "loud"})
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("An out of range port is rejected", func() {
			_, err := ParseFlags([]string{"-env-file", "none.env", "-d", "file:x.db", "-identity-salt", "s", "-p", "70000"})
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("A missing config file is rejected", func() {
			_, err := ParseFlags([]string{"-env-file", "none.env", "-c", filepath.Join(t.TempDir(), "missing.yaml")})
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

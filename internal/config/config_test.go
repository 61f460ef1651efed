package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testYAML = `server:
  host: "127.0.0.1"
  port: 3000
  mode: "release"
database:
  driver: "postgres"
  sqlite:
    path: "data/test.db"
  postgres:
    host: "db.example.com"
    port: 5433
    user: "admin"
    password: "secret"
    dbname: "testdb"
    sslmode: "require"
  pool:
    max_idle_conns: 5
    max_open_conns: 50
    conn_max_lifetime: "30m"
log:
  level: "info"
  format: "json"
auth:
  jwt_secret: "S3cure-Example-Secret-0123456789abcdef"
  token_timeout_minutes: 30
  refresh_timeout_minutes: 1440
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_FullYAML(t *testing.T) {
	path := writeTestConfig(t, testYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 3000)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("Server.Mode = %q, want %q", cfg.Server.Mode, "release")
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "postgres")
	}
	if cfg.Database.SQLite.Path != "data/test.db" {
		t.Errorf("SQLite.Path = %q, want %q", cfg.Database.SQLite.Path, "data/test.db")
	}
	if cfg.Database.Postgres.Host != "db.example.com" {
		t.Errorf("Postgres.Host = %q, want %q", cfg.Database.Postgres.Host, "db.example.com")
	}
	if cfg.Database.Postgres.Port != 5433 {
		t.Errorf("Postgres.Port = %d, want %d", cfg.Database.Postgres.Port, 5433)
	}
	if cfg.Database.Postgres.SSLMode != "require" {
		t.Errorf("Postgres.SSLMode = %q, want %q", cfg.Database.Postgres.SSLMode, "require")
	}

	if cfg.Database.Pool.MaxIdleConns != 5 {
		t.Errorf("Pool.MaxIdleConns = %d, want %d", cfg.Database.Pool.MaxIdleConns, 5)
	}
	if cfg.Database.Pool.MaxOpenConns != 50 {
		t.Errorf("Pool.MaxOpenConns = %d, want %d", cfg.Database.Pool.MaxOpenConns, 50)
	}
	if cfg.Database.Pool.ConnMaxLifetime != "30m" {
		t.Errorf("Pool.ConnMaxLifetime = %q, want %q", cfg.Database.Pool.ConnMaxLifetime, "30m")
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}

	if cfg.Auth.JWTSecret != "S3cure-Example-Secret-0123456789abcdef" {
		t.Errorf("Auth.JWTSecret = %q, want configured value", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTimeoutMinutes != 30 {
		t.Errorf("Auth.TokenTimeoutMinutes = %d, want %d", cfg.Auth.TokenTimeoutMinutes, 30)
	}
	if cfg.Auth.RefreshTimeoutMinutes != 1440 {
		t.Errorf("Auth.RefreshTimeoutMinutes = %d, want %d", cfg.Auth.RefreshTimeoutMinutes, 1440)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTestConfig(t, testYAML)

	t.Setenv("APP__SERVER__PORT", "9090")
	t.Setenv("APP__DATABASE__DRIVER", "sqlite")
	t.Setenv("APP__LOG__LEVEL", "error")

	// Keys with single underscores must survive the separator mapping.
	t.Setenv("APP__AUTH__TOKEN_TIMEOUT_MINUTES", "15")
	t.Setenv("APP__DATABASE__POOL__CONN_MAX_LIFETIME", "2h")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d (env override)", cfg.Server.Port, 9090)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want %q (env override)", cfg.Database.Driver, "sqlite")
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q (env override)", cfg.Log.Level, "error")
	}
	if cfg.Auth.TokenTimeoutMinutes != 15 {
		t.Errorf("Auth.TokenTimeoutMinutes = %d, want %d (env override)", cfg.Auth.TokenTimeoutMinutes, 15)
	}
	if cfg.Database.Pool.ConnMaxLifetime != "2h" {
		t.Errorf("Pool.ConnMaxLifetime = %q, want %q (env override)", cfg.Database.Pool.ConnMaxLifetime, "2h")
	}

	// Non-overridden values should remain from YAML.
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q (unchanged)", cfg.Server.Host, "127.0.0.1")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3000,
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "data/test.db"},
			Pool: PoolConfig{
				MaxIdleConns:    1,
				MaxOpenConns:    1,
				ConnMaxLifetime: "1m",
			},
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Auth: AuthConfig{
			JWTSecret:             "a-test-secret-at-least-32-chars-long",
			TokenTimeoutMinutes:   30,
			RefreshTimeoutMinutes: 1440,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid config passes",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid server mode",
			mutate:  func(c *Config) { c.Server.Mode = "invalid" },
			wantErr: "server.mode",
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "blank host",
			mutate:  func(c *Config) { c.Server.Host = "   " },
			wantErr: "server.host",
		},
		{
			name:    "unsupported driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "database.driver",
		},
		{
			name: "sqlite path required",
			mutate: func(c *Config) {
				c.Database.SQLite.Path = ""
			},
			wantErr: "database.sqlite.path",
		},
		{
			name: "postgres host required",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Postgres = PostgresConfig{
					Port: 5432, User: "admin", DBName: "app", SSLMode: "prefer",
				}
			},
			wantErr: "database.postgres.host",
		},
		{
			name: "postgres bad sslmode",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Postgres = PostgresConfig{
					Host: "db", Port: 5432, User: "admin", DBName: "app", SSLMode: "maybe",
				}
			},
			wantErr: "database.postgres.sslmode",
		},
		{
			name: "postgres sslmode disable rejected in release",
			mutate: func(c *Config) {
				c.Server.Mode = "release"
				c.Database.Driver = "postgres"
				c.Database.Postgres = PostgresConfig{
					Host: "db", Port: 5432, User: "admin", DBName: "app", SSLMode: "disable",
				}
			},
			wantErr: "database.postgres.sslmode",
		},
		{
			name: "postgres sslmode disable allowed in debug",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Postgres = PostgresConfig{
					Host: "db", Port: 5432, User: "admin", DBName: "app", SSLMode: "disable",
				}
			},
		},
		{
			name: "bad pool lifetime",
			mutate: func(c *Config) {
				c.Database.Pool.ConnMaxLifetime = "not-a-duration"
			},
			wantErr: "conn_max_lifetime",
		},
		{
			name: "negative pool lifetime",
			mutate: func(c *Config) {
				c.Database.Pool.ConnMaxLifetime = "-1m"
			},
			wantErr: "conn_max_lifetime",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "  " },
			wantErr: "auth.jwt_secret",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "too-short" },
			wantErr: "auth.jwt_secret",
		},
		{
			name: "weak jwt secret rejected in release",
			mutate: func(c *Config) {
				c.Server.Mode = "release"
				c.Auth.JWTSecret = strings.Repeat("a", 40)
			},
			wantErr: "auth.jwt_secret",
		},
		{
			name: "weak jwt secret allowed in debug",
			mutate: func(c *Config) {
				c.Auth.JWTSecret = strings.Repeat("a", 40)
			},
		},
		{
			name:    "token timeout must be positive",
			mutate:  func(c *Config) { c.Auth.TokenTimeoutMinutes = 0 },
			wantErr: "token_timeout_minutes",
		},
		{
			name:    "refresh timeout must be positive",
			mutate:  func(c *Config) { c.Auth.RefreshTimeoutMinutes = -1 },
			wantErr: "refresh_timeout_minutes",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NormalizesFields(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Mode = "  debug  "
	cfg.Server.Host = " 127.0.0.1 "
	cfg.Log.Level = " INFO "
	cfg.Log.Format = " Text "
	cfg.Auth.JWTSecret = "  a-test-secret-at-least-32-chars-long  "

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.Server.Mode != "debug" {
		t.Errorf("Server.Mode = %q, want trimmed %q", cfg.Server.Mode, "debug")
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want trimmed %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want normalized %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want normalized %q", cfg.Log.Format, "text")
	}
	if cfg.Auth.JWTSecret != "a-test-secret-at-least-32-chars-long" {
		t.Errorf("Auth.JWTSecret = %q, want trimmed secret", cfg.Auth.JWTSecret)
	}
}

func TestCountSecretClasses(t *testing.T) {
	tests := []struct {
		secret string
		want   int
	}{
		{"", 0},
		{"abcdef", 1},
		{"abcDEF", 2},
		{"abcDEF123", 3},
		{"abcDEF123!@#", 4},
		{"123456", 1},
		{"!!!---", 1},
	}
	for _, tt := range tests {
		if got := CountSecretClasses(tt.secret); got != tt.want {
			t.Errorf("CountSecretClasses(%q) = %d, want %d", tt.secret, got, tt.want)
		}
	}
}

package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/bleak/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{Name: "bleak", User: "bleak"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"driver", cfg.Driver, database.DriverPostgres},
		{"path", cfg.Path, "bleak.db"},
		{"host", cfg.Host, "localhost"},
		{"port", cfg.Port, 5432},
		{"ssl_mode", cfg.SSLMode, "disable"},
		{"max_open_conns", cfg.MaxOpenConns, 25},
		{"max_idle_conns", cfg.MaxIdleConns, 5},
		{"conn_max_lifetime", cfg.ConnMaxLifetime, "15m"},
		{"conn_timeout", cfg.ConnTimeout, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeSQLiteSkipsServerFields(t *testing.T) {
	cfg := database.Config{Driver: database.DriverSQLite}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.DriverName() != "sqlite" {
		t.Errorf("driver name: got %s, want sqlite", cfg.DriverName())
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "sqlite")
	t.Setenv("TEST_DB_PATH", "/var/lib/bleak/threads.db")
	t.Setenv("TEST_DB_HOST", "remotehost")
	t.Setenv("TEST_DB_PORT", "5433")
	t.Setenv("TEST_DB_NAME", "envdb")
	t.Setenv("TEST_DB_USER", "envuser")
	t.Setenv("TEST_DB_PASSWORD", "envpass")
	t.Setenv("TEST_DB_SSL_MODE", "require")
	t.Setenv("TEST_DB_MAX_OPEN", "50")
	t.Setenv("TEST_DB_MAX_IDLE", "10")
	t.Setenv("TEST_DB_LIFETIME", "30m")
	t.Setenv("TEST_DB_TIMEOUT", "10s")

	env := &database.Env{
		Driver:          "TEST_DB_DRIVER",
		Path:            "TEST_DB_PATH",
		Host:            "TEST_DB_HOST",
		Port:            "TEST_DB_PORT",
		Name:            "TEST_DB_NAME",
		User:            "TEST_DB_USER",
		Password:        "TEST_DB_PASSWORD",
		SSLMode:         "TEST_DB_SSL_MODE",
		MaxOpenConns:    "TEST_DB_MAX_OPEN",
		MaxIdleConns:    "TEST_DB_MAX_IDLE",
		ConnMaxLifetime: "TEST_DB_LIFETIME",
		ConnTimeout:     "TEST_DB_TIMEOUT",
	}

	cfg := database.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"driver", cfg.Driver, "sqlite"},
		{"path", cfg.Path, "/var/lib/bleak/threads.db"},
		{"host", cfg.Host, "remotehost"},
		{"port", cfg.Port, 5433},
		{"name", cfg.Name, "envdb"},
		{"user", cfg.User, "envuser"},
		{"password", cfg.Password, "envpass"},
		{"ssl_mode", cfg.SSLMode, "require"},
		{"max_open_conns", cfg.MaxOpenConns, 50},
		{"max_idle_conns", cfg.MaxIdleConns, 10},
		{"conn_max_lifetime", cfg.ConnMaxLifetime, "30m"},
		{"conn_timeout", cfg.ConnTimeout, "10s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{
			name:    "missing name",
			cfg:     database.Config{User: "bleak"},
			wantErr: "name required",
		},
		{
			name:    "missing user",
			cfg:     database.Config{Name: "bleak"},
			wantErr: "user required",
		},
		{
			name:    "unsupported driver",
			cfg:     database.Config{Driver: "mysql"},
			wantErr: "unsupported driver",
		},
		{
			name:    "invalid conn_max_lifetime",
			cfg:     database.Config{Name: "bleak", User: "bleak", ConnMaxLifetime: "bad"},
			wantErr: "invalid conn_max_lifetime",
		},
		{
			name:    "invalid conn_timeout",
			cfg:     database.Config{Driver: database.DriverSQLite, ConnTimeout: "bad"},
			wantErr: "invalid conn_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{
		Driver: database.DriverPostgres,
		Host:   "localhost",
		Port:   5432,
		Name:   "basedb",
		User:   "baseuser",
	}

	overlay := database.Config{
		Driver: database.DriverSQLite,
		Path:   "threads.db",
		Port:   5433,
	}

	base.Merge(&overlay)

	if base.Driver != database.DriverSQLite {
		t.Errorf("driver: got %s, want sqlite", base.Driver)
	}
	if base.Path != "threads.db" {
		t.Errorf("path: got %s, want threads.db", base.Path)
	}
	if base.Port != 5433 {
		t.Errorf("port: got %d, want 5433", base.Port)
	}
	if base.Host != "localhost" {
		t.Errorf("host should remain localhost, got %s", base.Host)
	}
	if base.User != "baseuser" {
		t.Errorf("user should remain baseuser, got %s", base.User)
	}
}

func TestDsn(t *testing.T) {
	tests := []struct {
		name     string
		cfg      database.Config
		expected string
	}{
		{
			name: "postgres",
			cfg: database.Config{
				Driver:   database.DriverPostgres,
				Host:     "localhost",
				Port:     5432,
				Name:     "bleak",
				User:     "bleak",
				Password: "secret",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 dbname=bleak user=bleak password=secret sslmode=disable",
		},
		{
			name:     "sqlite",
			cfg:      database.Config{Driver: database.DriverSQLite, Path: "bleak.db"},
			expected: "file:bleak.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if dsn := tt.cfg.Dsn(); dsn != tt.expected {
				t.Errorf("dsn:\ngot  %s\nwant %s", dsn, tt.expected)
			}
		})
	}
}

func TestDurationParsers(t *testing.T) {
	cfg := database.Config{
		ConnMaxLifetime: "15m",
		ConnTimeout:     "5s",
	}

	if d := cfg.ConnMaxLifetimeDuration(); d != 15*time.Minute {
		t.Errorf("conn_max_lifetime: got %v, want 15m", d)
	}
	if d := cfg.ConnTimeoutDuration(); d != 5*time.Second {
		t.Errorf("conn_timeout: got %v, want 5s", d)
	}
}

package infrastructure_test

import (
	"path/filepath"
	"testing"

	"github.com/JaimeStill/bleak/internal/config"
	"github.com/JaimeStill/bleak/internal/infrastructure"
	"github.com/JaimeStill/bleak/internal/model"
	"github.com/JaimeStill/bleak/pkg/database"
	"github.com/JaimeStill/bleak/pkg/pagination"
	"github.com/JaimeStill/bleak/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=bleakstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/bleakstore;"

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "bleak",
			User:            "bleak",
			Password:        "bleak",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			Enabled:          true,
			ContainerName:    "transcripts",
			ConnectionString: azuriteConnString,
		},
		API: config.APIConfig{
			Pagination: pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		},
		Model: model.Config{
			Provider:  model.ProviderAnthropic,
			Name:      "claude-sonnet-4-5",
			MaxTokens: 1024,
		},
		Checkpoints: config.CheckpointsConfig{Driver: "postgres"},
		Version:     "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Checkpoints == nil {
		t.Error("Checkpoints is nil")
	}
	if infra.Model == nil {
		t.Error("Model is nil")
	}
}

func TestNewDatabaseConnection(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn := infra.Database.Connection()
	if conn == nil {
		t.Fatal("Database.Connection() returned nil")
	}
	conn.Close()
}

func TestNewMemoryCheckpoints(t *testing.T) {
	cfg := validConfig()
	cfg.Checkpoints.Driver = "memory"
	cfg.Storage = storage.Config{}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if infra.Database != nil {
		t.Error("memory checkpoints should not open a database")
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}

func TestStartMigratesSQLite(t *testing.T) {
	cfg := validConfig()
	cfg.Storage = storage.Config{}
	cfg.Database.Driver = database.DriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "bleak.db")
	migrate := true
	cfg.Checkpoints = config.CheckpointsConfig{Driver: "sqlite", AutoMigrate: &migrate}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var count int
	row := infra.Database.Connection().QueryRow("SELECT COUNT(*) FROM checkpoints")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("checkpoints table missing: %v", err)
	}
	infra.Database.Connection().Close()
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.ConnectionString = "not-a-connection-string"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

func TestNewDisabledStorage(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Enabled = false

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := infra.Storage.Exists(t.Context(), "threads/t1.json"); err != storage.ErrDisabled {
		t.Errorf("Exists() error = %v, want ErrDisabled", err)
	}
}

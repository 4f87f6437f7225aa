package infrastructure_test

import (
	"testing"

	"github.com/JaimeStill/flora/internal/config"
	"github.com/JaimeStill/flora/internal/infrastructure"
	"github.com/JaimeStill/flora/pkg/database"
	"github.com/JaimeStill/flora/pkg/jobs"
	"github.com/JaimeStill/flora/pkg/plantnet"
	"github.com/JaimeStill/flora/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=florastore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/florastore;"

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "flora",
			User:            "flora",
			Password:        "flora",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "plant-images",
			ConnectionString: azuriteConnString,
			URLExpiry:        "1h",
			UploadExpiry:     "15m",
		},
		PlantNet: plantnet.Config{
			BaseURL:  "https://my-api.plantnet.org",
			Project:  "all",
			Language: "en",
			Results:  plantnet.MaxResults,
			Timeout:  "2m",
		},
		Jobs: jobs.Config{
			Driver:    jobs.DriverMemory,
			Workers:   2,
			QueueSize: 8,
		},
		Version: "0.1.0",
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
	if infra.Jobs == nil {
		t.Error("Jobs is nil")
	}
	if infra.PlantNet == nil {
		t.Error("PlantNet is nil")
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

func TestNewWithoutAPIKey(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("missing api key must not fail startup: %v", err)
	}
	if infra.PlantNet.Configured() {
		t.Error("client reports configured without an api key")
	}
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.ConnectionString = "not-a-connection-string"

	_, err := infrastructure.New(cfg)
	if err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

func TestNewUnknownJobsDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Jobs.Driver = "kafka"

	_, err := infrastructure.New(cfg)
	if err == nil {
		t.Fatal("expected error for unknown jobs driver")
	}
}

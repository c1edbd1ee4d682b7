package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/hg",
		LogDir:  "/home/user/.local/share/hg/log",
		Storage: StorageConfig{Type: "badger", DataDir: "/home/user/.local/share/hg/data", Prefix: "hg"},
		Tracking: TrackingConfig{
			CalorieTarget: 1800,
			WaterGoal:     3000,
			HistoryDays:   14,
		},
		Advisor: AdvisorConfig{Type: "openai", Model: "gpt-4o", APIKeyEnv: "MY_KEY"},
		Vaults: []VaultConfig{
			{Type: "s3", Name: "cloud", S3Bucket: "health", S3Prefix: "hg/", S3Region: "eu-west-1"},
		},
		Encryption: EncryptionConfig{Type: "age", PublicKeyPath: "/k/hg.pub", PrivateKeyPath: "/k/hg.key"},
		Metrics:    MetricsConfig{TextfilePath: "/var/lib/node_exporter/hg.prom"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Storage != original.Storage {
		t.Errorf("Storage = %+v, want %+v", got.Storage, original.Storage)
	}
	if got.Tracking != original.Tracking {
		t.Errorf("Tracking = %+v, want %+v", got.Tracking, original.Tracking)
	}
	if got.Advisor != original.Advisor {
		t.Errorf("Advisor = %+v, want %+v", got.Advisor, original.Advisor)
	}
	if len(got.Vaults) != 1 {
		t.Fatalf("len(Vaults) = %d, want 1", len(got.Vaults))
	}
	if got.Vaults[0] != original.Vaults[0] {
		t.Errorf("Vaults[0] = %+v, want %+v", got.Vaults[0], original.Vaults[0])
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if got.Metrics.TextfilePath != original.Metrics.TextfilePath {
		t.Errorf("Metrics.TextfilePath = %q, want %q", got.Metrics.TextfilePath, original.Metrics.TextfilePath)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/hg")

	if cfg.LogDir != "/data/hg/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/hg/log")
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.DataDir != "/data/hg/data" {
		t.Errorf("Storage = %+v, want sqlite in /data/hg/data", cfg.Storage)
	}
	if cfg.Advisor.APIKeyEnv != DefaultAPIKeyEnv {
		t.Errorf("Advisor.APIKeyEnv = %q, want %q", cfg.Advisor.APIKeyEnv, DefaultAPIKeyEnv)
	}
	if len(cfg.Vaults) != 1 || cfg.Vaults[0].FSVaultRoot != "/data/hg/vault" {
		t.Errorf("Vaults = %+v, want one filesystem vault at /data/hg/vault", cfg.Vaults)
	}
	if cfg.Encryption.PrivateKeyPath != "/data/hg/keys/hg.key" {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", cfg.Encryption.PrivateKeyPath, "/data/hg/keys/hg.key")
	}
}

func TestAdvisorConfig_APIKey(t *testing.T) {
	t.Run("reads the configured variable", func(t *testing.T) {
		t.Setenv("CUSTOM_HG_KEY", "sk-123")
		cfg := AdvisorConfig{APIKeyEnv: "CUSTOM_HG_KEY"}
		if got := cfg.APIKey(); got != "sk-123" {
			t.Errorf("APIKey() = %q, want %q", got, "sk-123")
		}
	})

	t.Run("falls back to HG_API_KEY", func(t *testing.T) {
		t.Setenv(DefaultAPIKeyEnv, "sk-default")
		cfg := AdvisorConfig{}
		if got := cfg.APIKey(); got != "sk-default" {
			t.Errorf("APIKey() = %q, want %q", got, "sk-default")
		}
	})

	t.Run("empty when unset", func(t *testing.T) {
		t.Setenv(DefaultAPIKeyEnv, "")
		cfg := AdvisorConfig{}
		if got := cfg.APIKey(); got != "" {
			t.Errorf("APIKey() = %q, want empty", got)
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "hg.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "hg.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "hg.toml")
		cfg := NewConfig(dir)
		cfg.Storage = StorageConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Storage.Type != "memory" {
			t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/hg.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

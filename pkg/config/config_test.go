package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CART_MAX_LINES", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Database.Driver != "mysql" {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.App.SessionTTL != 2*time.Hour {
		t.Errorf("session ttl = %v", cfg.App.SessionTTL)
	}
	if cfg.App.CartMaxLines != 10 {
		t.Errorf("cart max lines = %d", cfg.App.CartMaxLines)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port default = %q", cfg.Server.Port)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "pw")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing jwt secret")
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "app:\n  upload_dir: /srv/uploads\n  cart_max_lines: 5\nserver:\n  port: \"9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.UploadDir != "/srv/uploads" {
		t.Errorf("upload dir = %q", cfg.App.UploadDir)
	}
	if cfg.App.CartMaxLines != 5 {
		t.Errorf("cart max lines = %d", cfg.App.CartMaxLines)
	}
	if cfg.Server.Port != "9100" {
		t.Errorf("env should win over yaml, port = %q", cfg.Server.Port)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_DRIVER", "sqlite")

	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

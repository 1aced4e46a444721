package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.WineSearcher.BaseURL != "https://www.wine-searcher.com" {
		t.Errorf("BaseURL = %q", cfg.WineSearcher.BaseURL)
	}
	if cfg.WineSearcher.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.WineSearcher.MaxRetries)
	}
	if cfg.WineSearcher.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d, want 5", cfg.WineSearcher.MaxConcurrent)
	}
	if cfg.WineSearcher.BatchSize != 10 {
		t.Errorf("BatchSize = %d, want 10", cfg.WineSearcher.BatchSize)
	}
	if cfg.WineSearcher.Country != "usa" {
		t.Errorf("Country = %q, want usa", cfg.WineSearcher.Country)
	}
	if cfg.Checkpoint.Store != "file" || cfg.Checkpoint.Path != "output/wines.csv" {
		t.Errorf("checkpoint = %q/%q", cfg.Checkpoint.Store, cfg.Checkpoint.Path)
	}
	if cfg.Database.Enabled {
		t.Error("database should be disabled by default")
	}
	if cfg.Proxy.Enabled {
		t.Error("proxy should be disabled by default")
	}
	if cfg.Metrics.Addr != "" {
		t.Errorf("metrics addr = %q, want empty", cfg.Metrics.Addr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("WINESEARCHER_BATCH_SIZE", "25")
	t.Setenv("WINESEARCHER_COUNTRY", "fra")
	t.Setenv("CHECKPOINT_PATH", "/tmp/run.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.WineSearcher.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", cfg.WineSearcher.BatchSize)
	}
	if cfg.WineSearcher.Country != "fra" {
		t.Errorf("Country = %q, want fra", cfg.WineSearcher.Country)
	}
	if cfg.Checkpoint.Path != "/tmp/run.csv" {
		t.Errorf("checkpoint path = %q, want /tmp/run.csv", cfg.Checkpoint.Path)
	}
}

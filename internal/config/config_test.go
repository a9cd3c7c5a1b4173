package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_RenderingPresets(t *testing.T) {
	cfg := Default()

	p := cfg.Rendering.Presets
	if p.Navigation.WaitUntil != "networkidle0" {
		t.Errorf("wait_until = %q, want networkidle0", p.Navigation.WaitUntil)
	}
	if p.Navigation.Timeout != 30*time.Second {
		t.Errorf("navigation timeout = %v, want 30s", p.Navigation.Timeout)
	}
	if p.Screenshot.FullPage == nil || !*p.Screenshot.FullPage ||
		p.Screenshot.OmitBackground == nil || *p.Screenshot.OmitBackground {
		t.Errorf("unexpected screenshot preset %+v", p.Screenshot)
	}
	if p.Viewport.Width != 1280 || p.Viewport.Height != 720 {
		t.Errorf("viewport = %dx%d, want 1280x720", p.Viewport.Width, p.Viewport.Height)
	}
	if len(p.PDF.RejectResourceTypes) != 1 || p.PDF.RejectResourceTypes[0] != "image" {
		t.Errorf("reject_resource_types = %v", p.PDF.RejectResourceTypes)
	}
	if cfg.Rendering.HTTPTimeout != 0 {
		t.Errorf("http timeout should default to none, got %v", cfg.Rendering.HTTPTimeout)
	}
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
server:
  port: 9000
rendering:
  account_id: ${TEST_WEBSHOT_ACCOUNT}
  presets:
    viewport:
      width: 800
storage:
  directory: /tmp/from-yaml
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TEST_WEBSHOT_ACCOUNT", "acct-from-yaml")
	t.Setenv("CLOUDFLARE_API_TOKEN", "tok-from-env")
	t.Setenv("SCREENSHOT_FOLDER", "/tmp/from-env")
	t.Setenv("PORT", "7001")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Rendering.AccountID != "acct-from-yaml" {
		t.Errorf("account id = %q, want expanded value", cfg.Rendering.AccountID)
	}
	if cfg.Rendering.APIToken != "tok-from-env" {
		t.Errorf("api token = %q, want env value", cfg.Rendering.APIToken)
	}
	if cfg.Storage.Directory != "/tmp/from-env" {
		t.Errorf("storage dir = %q, want env override", cfg.Storage.Directory)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("port = %d, want 7001", cfg.Server.Port)
	}
	if cfg.Rendering.Presets.Viewport.Width != 800 {
		t.Errorf("viewport width = %d, want 800", cfg.Rendering.Presets.Viewport.Width)
	}
	// untouched preset keeps its default
	if cfg.Rendering.Presets.Viewport.Height != 720 {
		t.Errorf("viewport height = %d, want 720", cfg.Rendering.Presets.Viewport.Height)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Rendering.BaseURL != "https://api.cloudflare.com/client/v4" {
		t.Errorf("base url = %q", cfg.Rendering.BaseURL)
	}
}

func TestFeatureToggles(t *testing.T) {
	cfg := Default()
	if cfg.SpacesEnabled() || cfg.RedisEnabled() || cfg.LLMEnabled() {
		t.Fatal("optional integrations should be off by default")
	}
	cfg.DigitalOcean.Spaces.AccessKeyID = "id"
	cfg.DigitalOcean.Spaces.AccessKeySecret = "secret"
	cfg.DigitalOcean.Spaces.BucketName = "bucket"
	cfg.Redis.URL = "redis://localhost:6379"
	cfg.LLM.APIKey = "key"
	if !cfg.SpacesEnabled() || !cfg.RedisEnabled() || !cfg.LLMEnabled() {
		t.Fatal("expected integrations to be enabled")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		Database:   DatabaseConfig{URI: "mongodb://localhost:27017"},
		Generation: GenerationConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8000 {
		t.Errorf("expected Port=8000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverMongo {
		t.Errorf("expected Driver=%q, got %q", DriverMongo, cfg.Database.Driver)
	}
	if cfg.Database.Name != "survey_db" || cfg.Database.Collection != "surveys" {
		t.Errorf("expected survey_db/surveys, got %s/%s", cfg.Database.Name, cfg.Database.Collection)
	}
	if cfg.Generation.Provider != ProviderGemini {
		t.Errorf("expected Provider=%q, got %q", ProviderGemini, cfg.Generation.Provider)
	}
	if cfg.Generation.Model != "gemini-1.5-flash" {
		t.Errorf("expected Model=gemini-1.5-flash, got %q", cfg.Generation.Model)
	}
	if cfg.Generation.Retries() != 2 {
		t.Errorf("expected Retries=2, got %d", cfg.Generation.Retries())
	}
	if cfg.Templates.Source != TemplatesEmbedded {
		t.Errorf("expected Source=%q, got %q", TemplatesEmbedded, cfg.Templates.Source)
	}
}

func TestApplyDefaults_OpenAIModel(t *testing.T) {
	cfg := Config{Generation: GenerationConfig{Provider: ProviderOpenAI}}
	cfg.ApplyDefaults()

	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("expected openai default model, got %q", cfg.Generation.Model)
	}
}

func TestApplyDefaults_ZeroRetriesPreserved(t *testing.T) {
	zero := 0
	cfg := Config{Generation: GenerationConfig{MaxRetries: &zero}}
	cfg.ApplyDefaults()

	if cfg.Generation.Retries() != 0 {
		t.Errorf("explicit max_retries=0 was overwritten: %d", cfg.Generation.Retries())
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"mongo without uri", func(c *Config) { c.Database.URI = "" }, "database.uri"},
		{"unknown provider", func(c *Config) { c.Generation.Provider = "anthropic" }, "generation.provider"},
		{"missing api key", func(c *Config) { c.Generation.APIKey = "" }, "generation.api_key"},
		{"negative retries", func(c *Config) { n := -1; c.Generation.MaxRetries = &n }, "max_retries"},
		{"delay order", func(c *Config) { c.Generation.RetryMaxDelayMs = 10 }, "retry_max_delay_ms"},
		{"file without dir", func(c *Config) { c.Templates.Source = TemplatesFile }, "templates.dir"},
		{"redis without addrs", func(c *Config) { c.Templates.Source = TemplatesRedis }, "templates.redis.addrs"},
		{"unknown source", func(c *Config) { c.Templates.Source = "s3" }, "templates.source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_SQLiteNeedsNoURI(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = DriverSQLite
	cfg.Database.URI = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SURVEYD_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("a: ${SURVEYD_TEST_KEY}\nb: ${SURVEYD_TEST_UNSET:-fallback}\nc: ${SURVEYD_TEST_UNSET}")))
	want := "a: secret\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SURVEYD_TEST_GEN_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "test.yaml")
	yml := `
http:
  port: 9000
database:
  driver: sqlite
  path: /tmp/surveyd.db
generation:
  provider: openai
  api_key: ${SURVEYD_TEST_GEN_KEY}
  max_retries: 0
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Generation.APIKey != "from-env" {
		t.Errorf("api key = %q", cfg.Generation.APIKey)
	}
	if cfg.Generation.Retries() != 0 {
		t.Errorf("retries = %d", cfg.Generation.Retries())
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

package configs

import "testing"

func clearConfigEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET",
		"GOOGLE_CLIENT_ID", "GEMINI_API_KEY", "GEMINI_MODEL",
		"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
		"DATABASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Environment != "development" {
		t.Fatalf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Port != 4000 {
		t.Fatalf("Port = %d, want 4000", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("AllowedOrigins = %v, want [http://localhost:3000]", cfg.AllowedOrigins)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("development JWTSecret default is empty")
	}
	if cfg.DatabaseDSN == "" {
		t.Fatal("development DatabaseDSN default is empty")
	}
	if cfg.GeminiModel != "gemini-flash-latest" {
		t.Fatalf("GeminiModel = %q, want gemini-flash-latest", cfg.GeminiModel)
	}
	if cfg.StorageEnabled() {
		t.Fatal("StorageEnabled true with no S3 settings")
	}
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ALLOWED_ORIGINS", " https://app.example.com , https://admin.example.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %v, want 2 entries", cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[0] != "https://app.example.com" || cfg.AllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("AllowedOrigins = %v, not trimmed correctly", cfg.AllowedOrigins)
	}
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	clearConfigEnv(t)

	for _, port := range []string{"abc", "80", "70000"} {
		t.Setenv("PORT", port)

		if _, err := LoadConfig(); err == nil {
			t.Fatalf("LoadConfig accepted PORT=%q", port)
		}
	}
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://prod")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig accepted production without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig accepted production without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://prod")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("production AllowedOrigins default = %v, want empty", cfg.AllowedOrigins)
	}
}

func TestStorageEnabledRequiresAllSettings(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("S3_BUCKET_NAME", "avatars")
	t.Setenv("S3_ENDPOINT", "https://s3.example.com")
	t.Setenv("S3_ACCESS_KEY_ID", "key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StorageEnabled() {
		t.Fatal("StorageEnabled true without a secret access key")
	}

	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")

	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.StorageEnabled() {
		t.Fatal("StorageEnabled false with full S3 settings")
	}
}

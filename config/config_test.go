package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("UNITCOST_SERVER_PORT")
		os.Unsetenv("UNITCOST_SERVER_ENVIRONMENT")
		os.Unsetenv("UNITCOST_SERVER_ALLOWED_ORIGINS")
		os.Unsetenv("UNITCOST_SESSION_POINTER_PATH")
		os.Unsetenv("UNITCOST_SESSION_AUTOSAVE_DELAY")
		os.Unsetenv("UNITCOST_SESSION_RESTORE_LAST")
		os.Unsetenv("UNITCOST_LOGGER_LEVEL")
		os.Unsetenv("UNITCOST_LOGGER_ENCODING")
		os.Unsetenv("UNITCOST_RATELIMIT_PER_IP")
		os.Unsetenv("UNITCOST_RATELIMIT_BURST")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Session.PointerPath != "" {
			t.Errorf("Session.PointerPath = %s, want empty", cfg.Session.PointerPath)
		}
		if cfg.Session.AutosaveDelay != 750*time.Millisecond {
			t.Errorf("Session.AutosaveDelay = %v, want 750ms", cfg.Session.AutosaveDelay)
		}
		if !cfg.Session.RestoreLast {
			t.Errorf("Session.RestoreLast = false, want true")
		}
		if cfg.Logger.Level != "info" {
			t.Errorf("Logger.Level = %s, want info", cfg.Logger.Level)
		}
		if cfg.Logger.Encoding != "json" {
			t.Errorf("Logger.Encoding = %s, want json", cfg.Logger.Encoding)
		}
		if cfg.RateLimit.PerIP != 600 {
			t.Errorf("RateLimit.PerIP = %d, want 600", cfg.RateLimit.PerIP)
		}
		if cfg.RateLimit.Burst != 60 {
			t.Errorf("RateLimit.Burst = %d, want 60", cfg.RateLimit.Burst)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("UNITCOST_SERVER_PORT", "9090")
		os.Setenv("UNITCOST_SERVER_ENVIRONMENT", "production")
		os.Setenv("UNITCOST_SESSION_POINTER_PATH", "/tmp/unitcost/pointer")
		os.Setenv("UNITCOST_SESSION_AUTOSAVE_DELAY", "2s")
		os.Setenv("UNITCOST_SESSION_RESTORE_LAST", "false")
		os.Setenv("UNITCOST_LOGGER_LEVEL", "debug")
		os.Setenv("UNITCOST_LOGGER_ENCODING", "console")
		os.Setenv("UNITCOST_RATELIMIT_PER_IP", "120")
		os.Setenv("UNITCOST_RATELIMIT_BURST", "10")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Session.PointerPath != "/tmp/unitcost/pointer" {
			t.Errorf("Session.PointerPath = %s, want /tmp/unitcost/pointer", cfg.Session.PointerPath)
		}
		if cfg.Session.AutosaveDelay != 2*time.Second {
			t.Errorf("Session.AutosaveDelay = %v, want 2s", cfg.Session.AutosaveDelay)
		}
		if cfg.Session.RestoreLast {
			t.Errorf("Session.RestoreLast = true, want false")
		}
		if cfg.Logger.Level != "debug" {
			t.Errorf("Logger.Level = %s, want debug", cfg.Logger.Level)
		}
		if cfg.Logger.Encoding != "console" {
			t.Errorf("Logger.Encoding = %s, want console", cfg.Logger.Encoding)
		}
		if cfg.RateLimit.PerIP != 120 {
			t.Errorf("RateLimit.PerIP = %d, want 120", cfg.RateLimit.PerIP)
		}
		if cfg.RateLimit.Burst != 10 {
			t.Errorf("RateLimit.Burst = %d, want 10", cfg.RateLimit.Burst)
		}
	})

	t.Run("fails validation for invalid logger encoding", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("UNITCOST_LOGGER_ENCODING", "xml")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid logger encoding")
		}
	})

	t.Run("fails validation for zero autosave delay", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("UNITCOST_SESSION_AUTOSAVE_DELAY", "0s")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for zero autosave delay")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# Another comment
TEST_VAR_3=value3
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
			os.Unsetenv("TEST_VAR_3")
		}()

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		os.Setenv("TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_OVERRIDE")

		err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})

	t.Run("settings from .env reach Load", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		os.Unsetenv("UNITCOST_SERVER_PORT")
		defer os.Unsetenv("UNITCOST_SERVER_PORT")

		err := os.WriteFile(".env", []byte("UNITCOST_SERVER_PORT=7070\n"), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Session:   SessionConfig{AutosaveDelay: time.Second},
			Logger:    LoggerConfig{Level: "info", Encoding: "json"},
			RateLimit: RateLimitConfig{PerIP: 100, Burst: 10},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when port is empty", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty port")
		}
	})

	t.Run("fails for unknown log level", func(t *testing.T) {
		cfg := valid()
		cfg.Logger.Level = "verbose"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for unknown log level")
		}
	})

	t.Run("accepts upper case log level", func(t *testing.T) {
		cfg := valid()
		cfg.Logger.Level = "WARN"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("disabled rate limiting needs no burst", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit = RateLimitConfig{}
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails for negative rate limit", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit.PerIP = -1
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for negative rate limit")
		}
	})

	t.Run("fails for missing burst", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit.Burst = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for missing burst")
		}
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/nba-props/internal/platform/logging"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("APP_TIMEZONE", "America/New_York")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Namespace != "default-app-id" || cfg.Collection != "nba_props_cache" {
		t.Fatalf("unexpected cache location: %s/%s", cfg.Namespace, cfg.Collection)
	}
	if cfg.SnapshotBackend != BackendMemory {
		t.Fatalf("unexpected backend: %s", cfg.SnapshotBackend)
	}
	if cfg.PropsAPIPath != "/api/get_data" {
		t.Fatalf("unexpected props path: %s", cfg.PropsAPIPath)
	}
	if cfg.SnapshotReadCacheTTL != 30*time.Second {
		t.Fatalf("unexpected snapshot read cache ttl: %s", cfg.SnapshotReadCacheTTL)
	}
	if cfg.PropsAPIMaxRetries != 0 {
		t.Fatalf("expected no retries by default, got %d", cfg.PropsAPIMaxRetries)
	}
	if cfg.Location.String() != "America/New_York" {
		t.Fatalf("unexpected location: %s", cfg.Location)
	}
	if cfg.LogFormat != logging.FormatJSON {
		t.Fatalf("expected json logs in prod, got %s", cfg.LogFormat)
	}
	if !cfg.PropsAPICircuit.Enabled || cfg.PropsAPICircuit.OpenTimeout != 15*time.Second {
		t.Fatalf("unexpected circuit defaults: %+v", cfg.PropsAPICircuit)
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	isolateEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_BackendValidation(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SNAPSHOT_BACKEND", "firestore")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown SNAPSHOT_BACKEND")
	}
}

func TestLoad_IdentityValidation(t *testing.T) {
	isolateEnv(t)
	t.Setenv("IDENTITY_PROVIDER", "oauth")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown IDENTITY_PROVIDER")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	isolateEnv(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown APP_TIMEZONE")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	isolateEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	isolateEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_CircuitBreakerValidation(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PROPS_API_CIRCUIT_FAILURE_COUNT", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero failure count")
	}
}

func TestLoad_NamespaceCannotContainSlash(t *testing.T) {
	isolateEnv(t)
	t.Setenv("APP_NAMESPACE", "a/b")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for namespace with slash")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("APP_NAMESPACE=from-file\nPROPS_API_BASE_URL=http://props.local\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("PROPS_API_BASE_URL", "http://props.override")
	// godotenv only fills unset variables; register for restore, then unset.
	t.Setenv("APP_NAMESPACE", "")
	_ = os.Unsetenv("APP_NAMESPACE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Namespace != "from-file" {
		t.Fatalf("expected namespace from env file, got %q", cfg.Namespace)
	}
	if cfg.PropsAPIBaseURL != "http://props.override" {
		t.Fatalf("real environment must win over env file, got %q", cfg.PropsAPIBaseURL)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected split: %#v", got)
	}
}

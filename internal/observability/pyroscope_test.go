package observability

import (
	"testing"

	"github.com/riskibarqy/nba-props/internal/config"
	"github.com/riskibarqy/nba-props/internal/platform/logging"
)

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestPyroscopeTags(t *testing.T) {
	tags := pyroscopeTags(config.Config{
		AppEnv:          config.EnvProd,
		ServiceName:     "nba-props-api",
		Namespace:       "props-prod",
		SnapshotBackend: config.BackendRedis,
	})
	if tags["env"] != config.EnvProd || tags["service"] != "nba-props-api" {
		t.Fatalf("unexpected base tags %v", tags)
	}
	if tags["namespace"] != "props-prod" || tags["snapshot_backend"] != config.BackendRedis {
		t.Fatalf("unexpected snapshot tags %v", tags)
	}

	tags = pyroscopeTags(config.Config{AppEnv: config.EnvDev})
	if _, ok := tags["namespace"]; ok {
		t.Fatalf("did not expect namespace tag without a namespace")
	}
}

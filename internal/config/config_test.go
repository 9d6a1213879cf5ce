package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanshika/wormsim/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Simulation.InfectionProb != 0.5 || cfg.Simulation.InoculationProb != 0.5 {
		t.Fatalf("unexpected probabilities %+v", cfg.Simulation)
	}
	if cfg.Simulation.FirstInfected != domain.RandomNode || cfg.Simulation.Inoculator != "" {
		t.Fatalf("unexpected seeds %+v", cfg.Simulation)
	}
	if cfg.Store.Path != "wormsim.db" || cfg.HTTP.Port != 8080 {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Store, cfg.HTTP)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SIM_NETWORK", "nets/lab.csv")
	t.Setenv("SIM_INFECTION_PROBABILITY", "0.25")
	t.Setenv("SIM_FIRST_INFECTED", "A")
	t.Setenv("SIM_INOCULATOR", "C")
	t.Setenv("SIM_SEED", "99")
	t.Setenv("SIM_MAX_ROUNDS", "40")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("STORE_RECORD", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	sim := cfg.Simulation
	if sim.Network != "nets/lab.csv" || sim.InfectionProb != 0.25 || sim.FirstInfected != "A" ||
		sim.Inoculator != "C" || sim.Seed != 99 || sim.MaxRounds != 40 {
		t.Fatalf("unexpected simulation config %+v", sim)
	}
	if cfg.HTTP.Port != 9090 || cfg.HTTP.ReadTimeout != 3*time.Second || !cfg.Store.Record {
		t.Fatalf("unexpected server/store config %+v %+v", cfg.HTTP, cfg.Store)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	cases := map[string]string{
		"SIM_INFECTION_PROBABILITY": "often",
		"SIM_SEED":                  "x",
		"SIM_MAX_ROUNDS":            "1.5",
		"SERVER_PORT":               "70000",
		"SERVER_IDLE_TIMEOUT":       "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, "wormsim.yaml", `
simulation:
  network: graph.csv
  infection_probability: 0.8
  inoculator: random
  max_rounds: 12
store:
  record: true
logging:
  level: debug
server:
  write_timeout: 2m
`)
	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Simulation.Network != "graph.csv" || cfg.Simulation.InfectionProb != 0.8 ||
		cfg.Simulation.Inoculator != "random" || cfg.Simulation.MaxRounds != 12 {
		t.Fatalf("unexpected simulation config %+v", cfg.Simulation)
	}
	if cfg.Simulation.InoculationProb != 0.5 {
		t.Fatalf("expected untouched default, got %v", cfg.Simulation.InoculationProb)
	}
	if !cfg.Store.Record || cfg.Logging.Level != "debug" || cfg.HTTP.WriteTimeout != 2*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	path := writeFile(t, "wormsim.toml", `
[simulation]
network = "graph.csv"
first_infected = "7"
seed = 5

[graph]
uri = "neo4j://localhost:7687"
`)
	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Simulation.FirstInfected != "7" || cfg.Simulation.Seed != 5 || cfg.Graph.URI != "neo4j://localhost:7687" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "wormsim.yml", "simulation:\n  infection_probability: 0.8\n")
	t.Setenv("SIM_INFECTION_PROBABILITY", "0.1")

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Simulation.InfectionProb != 0.1 {
		t.Fatalf("expected env to win, got %v", cfg.Simulation.InfectionProb)
	}
}

func TestFileErrors(t *testing.T) {
	unknownYAML := writeFile(t, "bad.yaml", "simulation:\n  infection_chance: 0.3\n")
	if _, err := LoadWithFile(unknownYAML); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unknown yaml key, got %v", err)
	}

	unknownTOML := writeFile(t, "bad.toml", "[simulation]\nspeed = 3\n")
	if _, err := LoadWithFile(unknownTOML); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unknown toml key, got %v", err)
	}

	ini := writeFile(t, "wormsim.ini", "network=graph.csv\n")
	if _, err := LoadWithFile(ini); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unsupported extension, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := LoadWithFile(missing); !errors.Is(err, domain.ErrIO) {
		t.Fatalf("expected ErrIO for missing file, got %v", err)
	}
}

func TestSimulationRun(t *testing.T) {
	sim := Default().Simulation
	sim.Inoculator = "Z"
	sim.MaxRounds = 9

	run := sim.SimulationRun()
	if run.PatientZero != domain.RandomNode || run.Inoculator != "Z" || run.MaxRounds != 9 || run.InfectionProb != 0.5 {
		t.Fatalf("unexpected run config %+v", run)
	}
}

func TestHTTPRunGuards(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTP.MaxRounds != 10000 || cfg.HTTP.RunTimeout != 30*time.Second || cfg.HTTP.NetworkDir != "" {
		t.Fatalf("unexpected run guard defaults %+v", cfg.HTTP)
	}

	path := writeFile(t, "server.yaml", "server:\n  network_dir: /srv/nets\n  max_rounds: 500\n  run_timeout: 5s\n")
	t.Setenv("SERVER_MAX_ROUNDS", "250")
	cfg, err = LoadWithFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTP.NetworkDir != "/srv/nets" || cfg.HTTP.MaxRounds != 250 || cfg.HTTP.RunTimeout != 5*time.Second {
		t.Fatalf("unexpected run guards %+v", cfg.HTTP)
	}
}

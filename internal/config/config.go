package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/simulation"
)

// Config aggregates application configuration values.
type Config struct {
	Simulation SimulationConfig
	Store      StoreConfig
	HTTP       HTTPConfig
	Graph      GraphConfig
	Logging    LoggingConfig
}

// SimulationConfig holds the per-run knobs shared by the CLI and the API.
type SimulationConfig struct {
	Network         string
	InfectionProb   float64
	FirstInfected   string
	Inoculator      string
	InoculationProb float64
	Seed            int64
	MaxRounds       int
}

// StoreConfig locates the run ledger.
type StoreConfig struct {
	Path   string
	Record bool
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// AllowedOriginsCSV enables CORS for the listed origins.
	AllowedOriginsCSV string

	// NetworkDir is the only directory HTTP clients may name edge-list files
	// in. Empty disables networkPath file references over HTTP.
	NetworkDir string

	// MaxRounds caps every HTTP run and RunTimeout bounds one simulation or
	// trials request. Zero disables either guard.
	MaxRounds  int
	RunTimeout time.Duration
}

// GraphConfig describes connectivity to the Neo4j database holding networks.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultInfectionProb    = 0.5
	defaultInoculationProb  = 0.5
	defaultStorePath        = "wormsim.db"
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 60 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultMaxBodyBytes     = 8 << 20
	defaultHTTPMaxRounds    = 10000
	defaultRunTimeout       = 30 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Simulation: SimulationConfig{
			InfectionProb:   defaultInfectionProb,
			FirstInfected:   domain.RandomNode,
			InoculationProb: defaultInoculationProb,
		},
		Store: StoreConfig{
			Path: defaultStorePath,
		},
		HTTP: HTTPConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			MaxBodyBytes:    defaultMaxBodyBytes,
			MaxRounds:       defaultHTTPMaxRounds,
			RunTimeout:      defaultRunTimeout,
		},
		Graph: GraphConfig{
			MaxConnections: defaultGraphMaxSessions,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
	}
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	return LoadWithFile("")
}

// LoadWithFile applies defaults, then the optional config file, then the
// environment. Command-line flags are applied on top by the caller.
func LoadWithFile(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, errors.Wrap(domain.ErrConfiguration, err.Error())
	}
	return cfg, nil
}

// SimulationRun converts the simulation section into a run configuration.
func (c SimulationConfig) SimulationRun() simulation.Config {
	return simulation.Config{
		InfectionProb:   c.InfectionProb,
		InoculationProb: c.InoculationProb,
		PatientZero:     c.FirstInfected,
		Inoculator:      c.Inoculator,
		MaxRounds:       c.MaxRounds,
	}
}

// AllowedOrigins splits AllowedOriginsCSV, dropping blanks.
func (c HTTPConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(c.AllowedOriginsCSV, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// Address joins host and port for net/http.
func (c HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func applyEnv(cfg *Config) error {
	sim := &cfg.Simulation
	sim.Network = valueOrDefault("SIM_NETWORK", sim.Network)
	sim.FirstInfected = valueOrDefault("SIM_FIRST_INFECTED", sim.FirstInfected)
	sim.Inoculator = valueOrDefault("SIM_INOCULATOR", sim.Inoculator)

	var err error
	if sim.InfectionProb, err = parseFloatWithDefault("SIM_INFECTION_PROBABILITY", sim.InfectionProb); err != nil {
		return err
	}
	if sim.InoculationProb, err = parseFloatWithDefault("SIM_INOCULATION_PROBABILITY", sim.InoculationProb); err != nil {
		return err
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		seed, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return errors.Wrapf(perr, "invalid SIM_SEED value %q", v)
		}
		sim.Seed = seed
	}
	if v := os.Getenv("SIM_MAX_ROUNDS"); v != "" {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return errors.Wrapf(perr, "invalid SIM_MAX_ROUNDS value %q", v)
		}
		sim.MaxRounds = n
	}

	cfg.Store.Path = valueOrDefault("STORE_PATH", cfg.Store.Path)
	cfg.Store.Record = parseBoolWithDefault("STORE_RECORD", cfg.Store.Record)

	cfg.Graph.URI = valueOrDefault("GRAPH_URI", cfg.Graph.URI)
	cfg.Graph.Database = valueOrDefault("GRAPH_DATABASE", cfg.Graph.Database)
	cfg.Graph.Username = valueOrDefault("GRAPH_USERNAME", cfg.Graph.Username)
	cfg.Graph.Password = valueOrDefault("GRAPH_PASSWORD", cfg.Graph.Password)
	cfg.Graph.MaxConnections = parseIntWithDefault("GRAPH_MAX_CONNECTIONS", cfg.Graph.MaxConnections)

	cfg.Logging.Level = valueOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.IncludeCaller = parseBoolWithDefault("LOG_INCLUDE_CALLER", cfg.Logging.IncludeCaller)

	cfg.HTTP.Host = valueOrDefault("SERVER_HOST", cfg.HTTP.Host)
	cfg.HTTP.AllowedOriginsCSV = valueOrDefault("SERVER_ALLOWED_ORIGINS", cfg.HTTP.AllowedOriginsCSV)
	cfg.HTTP.NetworkDir = valueOrDefault("SERVER_NETWORK_DIR", cfg.HTTP.NetworkDir)
	cfg.HTTP.MaxRounds = parseIntWithDefault("SERVER_MAX_ROUNDS", cfg.HTTP.MaxRounds)
	cfg.HTTP.MaxBodyBytes = int64(parseIntWithDefault("SERVER_MAX_BODY_BYTES", int(cfg.HTTP.MaxBodyBytes)))
	port, err := parsePort("SERVER_PORT", cfg.HTTP.Port)
	if err != nil {
		return err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"SERVER_RUN_TIMEOUT", &cfg.HTTP.RunTimeout},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s", d.key)
			}
			*d.dst = parsed
		}
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseFloatWithDefault(key string, fallback float64) (float64, error) {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid %s value %q", key, v)
		}
		return val, nil
	}
	return fallback, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid %s value %q", key, v)
		}
		if port <= 0 || port > 65535 {
			return 0, errors.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}

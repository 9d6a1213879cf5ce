package config

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vanshika/wormsim/internal/domain"
)

// fileConfig mirrors the config file layout. Pointer fields distinguish
// "absent" from a zero value so the file only overrides what it sets.
type fileConfig struct {
	Simulation struct {
		Network         *string  `yaml:"network" toml:"network"`
		InfectionProb   *float64 `yaml:"infection_probability" toml:"infection_probability"`
		FirstInfected   *string  `yaml:"first_infected" toml:"first_infected"`
		Inoculator      *string  `yaml:"inoculator" toml:"inoculator"`
		InoculationProb *float64 `yaml:"inoculation_probability" toml:"inoculation_probability"`
		Seed            *int64   `yaml:"seed" toml:"seed"`
		MaxRounds       *int     `yaml:"max_rounds" toml:"max_rounds"`
	} `yaml:"simulation" toml:"simulation"`

	Store struct {
		Path   *string `yaml:"path" toml:"path"`
		Record *bool   `yaml:"record" toml:"record"`
	} `yaml:"store" toml:"store"`

	Server struct {
		Host            *string `yaml:"host" toml:"host"`
		Port            *int    `yaml:"port" toml:"port"`
		ReadTimeout     *string `yaml:"read_timeout" toml:"read_timeout"`
		WriteTimeout    *string `yaml:"write_timeout" toml:"write_timeout"`
		ShutdownTimeout *string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
		RunTimeout      *string `yaml:"run_timeout" toml:"run_timeout"`
		NetworkDir      *string `yaml:"network_dir" toml:"network_dir"`
		MaxRounds       *int    `yaml:"max_rounds" toml:"max_rounds"`
	} `yaml:"server" toml:"server"`

	Graph struct {
		URI            *string `yaml:"uri" toml:"uri"`
		Database       *string `yaml:"database" toml:"database"`
		Username       *string `yaml:"username" toml:"username"`
		Password       *string `yaml:"password" toml:"password"`
		MaxConnections *int    `yaml:"max_connections" toml:"max_connections"`
	} `yaml:"graph" toml:"graph"`

	Logging struct {
		Level         *string `yaml:"level" toml:"level"`
		Format        *string `yaml:"format" toml:"format"`
		IncludeCaller *bool   `yaml:"include_caller" toml:"include_caller"`
	} `yaml:"logging" toml:"logging"`
}

func applyFile(cfg *Config, path string) error {
	raw, err := decodeFile(path)
	if err != nil {
		return err
	}

	sim := raw.Simulation
	setString(&cfg.Simulation.Network, sim.Network)
	setFloat(&cfg.Simulation.InfectionProb, sim.InfectionProb)
	setString(&cfg.Simulation.FirstInfected, sim.FirstInfected)
	setString(&cfg.Simulation.Inoculator, sim.Inoculator)
	setFloat(&cfg.Simulation.InoculationProb, sim.InoculationProb)
	if sim.Seed != nil {
		cfg.Simulation.Seed = *sim.Seed
	}
	setInt(&cfg.Simulation.MaxRounds, sim.MaxRounds)

	setString(&cfg.Store.Path, raw.Store.Path)
	setBool(&cfg.Store.Record, raw.Store.Record)

	setString(&cfg.HTTP.Host, raw.Server.Host)
	setInt(&cfg.HTTP.Port, raw.Server.Port)
	setString(&cfg.HTTP.NetworkDir, raw.Server.NetworkDir)
	setInt(&cfg.HTTP.MaxRounds, raw.Server.MaxRounds)
	for _, d := range []struct {
		name string
		src  *string
		dst  *time.Duration
	}{
		{"server.read_timeout", raw.Server.ReadTimeout, &cfg.HTTP.ReadTimeout},
		{"server.write_timeout", raw.Server.WriteTimeout, &cfg.HTTP.WriteTimeout},
		{"server.shutdown_timeout", raw.Server.ShutdownTimeout, &cfg.HTTP.ShutdownTimeout},
		{"server.run_timeout", raw.Server.RunTimeout, &cfg.HTTP.RunTimeout},
	} {
		if d.src == nil {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(*d.src))
		if err != nil {
			return errors.Wrapf(domain.ErrConfiguration, "%s: parse %s: %v", path, d.name, err)
		}
		*d.dst = parsed
	}

	setString(&cfg.Graph.URI, raw.Graph.URI)
	setString(&cfg.Graph.Database, raw.Graph.Database)
	setString(&cfg.Graph.Username, raw.Graph.Username)
	setString(&cfg.Graph.Password, raw.Graph.Password)
	setInt(&cfg.Graph.MaxConnections, raw.Graph.MaxConnections)

	setString(&cfg.Logging.Level, raw.Logging.Level)
	setString(&cfg.Logging.Format, raw.Logging.Format)
	setBool(&cfg.Logging.IncludeCaller, raw.Logging.IncludeCaller)
	return nil
}

// decodeFile picks the decoder from the extension and rejects unknown keys.
func decodeFile(path string) (fileConfig, error) {
	var raw fileConfig

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return raw, errors.Wrapf(domain.Classify(domain.ErrIO, err), "read config %s", path)
			}
			return raw, errors.Wrapf(domain.ErrConfiguration, "%s: %v", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return raw, errors.Wrapf(domain.ErrConfiguration, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return raw, errors.Wrapf(domain.Classify(domain.ErrIO, err), "read config %s", path)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return raw, errors.Wrapf(domain.ErrConfiguration, "%s: %v", path, err)
		}
	default:
		return raw, errors.Wrapf(domain.ErrConfiguration, "config file %s: unsupported extension %q", path, ext)
	}
	return raw, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

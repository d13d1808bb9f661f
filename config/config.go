// Package config loads run configuration for the log processing tools. The
// conf file is functionally equivalent to the CLI flags: `path` names the
// candump log to read and `pgns` lists PGNs of interest.
package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	j1939 "github.com/truckbus/go-j1939-candump"
)

type Config struct {
	// Path is candump log file to process.
	Path string
	// PGNs are PGNs of interest. Empty means no filtering.
	PGNs []uint32
}

// Filter returns PGN filter built from configured PGNs.
func (c Config) Filter() j1939.PGNFilter {
	return j1939.NewPGNFilter(c.PGNs...)
}

// Load reads configuration from given file. Format is decided by the file
// extension, json as the original tooling used but yaml works as well. Files
// with an extension viper does not know, like the traditional `.conf`, are
// read as json. PGN values may be given as numbers or as decimal strings.
// Errors here are fatal at startup, before any log line is processed.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !slices.Contains(viper.SupportedExts, ext) {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read config %v, err: %w", path, err)
	}

	logPath := v.GetString("path")
	if logPath == "" {
		return Config{}, fmt.Errorf("config %v is missing `path` field", path)
	}

	pgns := make([]uint32, 0)
	for _, raw := range v.GetStringSlice("pgns") {
		pgn, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("config %v has invalid PGN %q, err: %w", path, raw, err)
		}
		pgns = append(pgns, uint32(pgn))
	}

	return Config{
		Path: logPath,
		PGNs: pgns,
	}, nil
}

// Package config is the single source of truth for simulation and
// session configuration, grounded on the teacher's internal/config/
// config.go (per-concern XxxFromEnv constructors, a top-level Load
// aggregate). Precedence collapses the original C++ Configuration's five
// layers (_examples/original_source/src/configuration.hpp: defaults <
// machine file < user file < CLI < runtime) into defaults < file < flags
// < runtime-override, since this port has no machine-vs-user file
// distinction worth preserving.
package config

import (
	"os"
	"strconv"
)

// NetworkMode selects which coordinator variant bootstraps.
type NetworkMode string

const (
	ModeLocal      NetworkMode = "local"
	ModeClient     NetworkMode = "client"
	ModeServer     NetworkMode = "server"
	ModeWithServer NetworkMode = "with-server"
)

// SimConfig carries the tick-rate and journal tuning knobs the simulation
// core needs at startup.
type SimConfig struct {
	TPS              int
	CheckpointTicks  int64
	MaxInputsPerTick int
	MaxCheckpoints   int
}

// DefaultSimConfig returns the core's baseline tuning (spec.md §6: 30 TPS).
func DefaultSimConfig() SimConfig {
	return SimConfig{TPS: 30, CheckpointTicks: 150, MaxInputsPerTick: 64, MaxCheckpoints: 64}
}

// SimConfigFromEnv overrides DefaultSimConfig with SHITBRIX_TPS /
// SHITBRIX_CHECKPOINT_TICKS / SHITBRIX_MAX_INPUTS_PER_TICK when set.
func SimConfigFromEnv() SimConfig {
	c := DefaultSimConfig()
	if v := getEnvInt("SHITBRIX_TPS", 0); v > 0 {
		c.TPS = v
	}
	if v := getEnvInt64("SHITBRIX_CHECKPOINT_TICKS", 0); v > 0 {
		c.CheckpointTicks = v
	}
	if v := getEnvInt("SHITBRIX_MAX_INPUTS_PER_TICK", 0); v > 0 {
		c.MaxInputsPerTick = v
	}
	return c
}

// SessionConfig is the CLI surface of spec.md §6, plus runtime settings
// layered on top by the coordinator itself (e.g. a resolved port).
type SessionConfig struct {
	NetworkMode  NetworkMode
	PlayerNumber *int // nil means "control all local players"
	ReplayPath   string
	LogPath      string
	ServerURL    string
	Port         int
	Autorecord   bool
}

// DefaultSessionConfig matches spec.md §6's stated CLI defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		NetworkMode: ModeLocal,
		LogPath:     "logfile.txt",
		Port:        4753,
	}
}

// SessionFromEnv layers SHITBRIX_-prefixed environment overrides onto
// DefaultSessionConfig. CLI flags (cmd/shitbrix/main.go) are applied on
// top of this, and take precedence.
func SessionFromEnv() SessionConfig {
	c := DefaultSessionConfig()
	if v := os.Getenv("SHITBRIX_NETWORK_MODE"); v != "" {
		c.NetworkMode = NetworkMode(v)
	}
	if v := os.Getenv("SHITBRIX_LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("SHITBRIX_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := getEnvInt("SHITBRIX_PORT", 0); v > 0 {
		c.Port = v
	}
	c.Autorecord = getEnvBool("SHITBRIX_AUTORECORD", c.Autorecord)
	return c
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

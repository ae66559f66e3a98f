// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all network synchronization settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimulationConfig holds the fixed simulation step shared by prediction and
// the transport's expected server cadence.
type SimulationConfig struct {
	TickRate int     // Server simulation steps per second
	DT       float64 // Fixed step in seconds, derived from TickRate
}

// DefaultSimulation returns the default simulation configuration.
func DefaultSimulation() SimulationConfig {
	const tickRate = 30
	return SimulationConfig{
		TickRate: tickRate,
		DT:       1.0 / float64(tickRate),
	}
}

// SimulationFromEnv returns simulation configuration with environment
// variable overrides. Environment variables take precedence over defaults.
func SimulationFromEnv() SimulationConfig {
	cfg := DefaultSimulation()

	if tr := getEnvInt("ORBIT_TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
		cfg.DT = 1.0 / float64(tr)
	}

	return cfg
}

// =============================================================================
// BUFFER & ADAPTIVE INTERPOLATION CONFIGURATION
// =============================================================================

// AdaptiveInterpolationConfig tunes the EMA-driven render delay.
type AdaptiveInterpolationConfig struct {
	SmoothingFactor float64       // EMA weight given to each new interval sample
	BufferSnapshots float64       // Target render delay expressed in inter-arrival gaps
	MinDelay        time.Duration // Lower clamp on the render delay
	MaxDelay        time.Duration // Upper clamp on the render delay
}

// BufferConfig holds snapshot/input buffer sizing and interpolation tuning.
type BufferConfig struct {
	SnapshotBufferSize  int           // Capacity of the bounded snapshot FIFO
	InputBufferSize     int           // Capacity of the pending-input queue
	InterpolationDelay  time.Duration // Initial/post-reset render delay
	BirthAnimationTicks int           // spawnTick window used by the tick-based birth policy
	Adaptive            AdaptiveInterpolationConfig
}

// DefaultBuffer returns the default buffer configuration.
// This is the SINGLE SOURCE OF TRUTH for spec.md §6 well-known constants.
func DefaultBuffer() BufferConfig {
	return BufferConfig{
		SnapshotBufferSize:  32,
		InputBufferSize:     64,
		InterpolationDelay:  100 * time.Millisecond,
		BirthAnimationTicks: 15,
		Adaptive: AdaptiveInterpolationConfig{
			SmoothingFactor: 0.15,
			BufferSnapshots: 2,
			MinDelay:        80 * time.Millisecond,
			MaxDelay:        200 * time.Millisecond,
		},
	}
}

// BufferFromEnv returns buffer configuration with environment variable
// overrides.
func BufferFromEnv() BufferConfig {
	cfg := DefaultBuffer()

	if n := getEnvInt("ORBIT_SNAPSHOT_BUFFER_SIZE", 0); n > 0 {
		cfg.SnapshotBufferSize = n
	}
	if n := getEnvInt("ORBIT_INPUT_BUFFER_SIZE", 0); n > 0 {
		cfg.InputBufferSize = n
	}
	if ms := getEnvInt("ORBIT_INTERPOLATION_DELAY_MS", 0); ms > 0 {
		cfg.InterpolationDelay = time.Duration(ms) * time.Millisecond
	}
	if v := getEnvFloat("ORBIT_SMOOTHING_FACTOR", -1); v >= 0 {
		cfg.Adaptive.SmoothingFactor = v
	}
	if ms := getEnvInt("ORBIT_MIN_DELAY_MS", 0); ms > 0 {
		cfg.Adaptive.MinDelay = time.Duration(ms) * time.Millisecond
	}
	if ms := getEnvInt("ORBIT_MAX_DELAY_MS", 0); ms > 0 {
		cfg.Adaptive.MaxDelay = time.Duration(ms) * time.Millisecond
	}

	return cfg
}

// =============================================================================
// PHYSICS CONFIGURATION (client-side prediction)
// =============================================================================

// PhysicsConfig holds the constants the predictor replays locally. These must
// track the authoritative server's own constants or reconciliation will
// permanently fight the server's corrections.
type PhysicsConfig struct {
	Drag            float64 // Per-tick velocity damping factor
	MaxVelocity     float64 // Speed clamp applied before integration
	BaseThrust      float64 // Thrust magnitude at ReferenceMass
	MassMinimum     float64 // Floor applied before computing the thrust multiplier
	ReferenceMass   float64 // Mass at which ThrustMultiplier == 1.0
	MinThrustMult   float64 // Lower clamp on the mass-derived thrust multiplier
	MaxThrustMult   float64 // Upper clamp on the mass-derived thrust multiplier
}

// DefaultPhysics returns the default physics configuration.
func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Drag:          0.002,
		MaxVelocity:   500,
		BaseThrust:    200,
		MassMinimum:   10,
		ReferenceMass: 100,
		MinThrustMult: 0.25,
		MaxThrustMult: 3.5,
	}
}

// PhysicsFromEnv returns physics configuration with environment variable
// overrides.
func PhysicsFromEnv() PhysicsConfig {
	cfg := DefaultPhysics()

	if v := getEnvFloat("ORBIT_DRAG", -1); v >= 0 {
		cfg.Drag = v
	}
	if v := getEnvFloat("ORBIT_MAX_VELOCITY", -1); v >= 0 {
		cfg.MaxVelocity = v
	}
	if v := getEnvFloat("ORBIT_BASE_THRUST", -1); v >= 0 {
		cfg.BaseThrust = v
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Simulation SimulationConfig
	Buffer     BufferConfig
	Physics    PhysicsConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Simulation: SimulationFromEnv(),
		Buffer:     BufferFromEnv(),
		Physics:    PhysicsFromEnv(),
	}
}

// Defaults returns the complete configuration with no environment overrides,
// exactly matching spec.md §6's well-known constants.
func Defaults() AppConfig {
	return AppConfig{
		Simulation: DefaultSimulation(),
		Buffer:     DefaultBuffer(),
		Physics:    DefaultPhysics(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// Package config provides configuration loading for the viewer and the simulator API.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	SimURL    string // Base URL of the simulation API; empty runs the simulator in-process
	SimAddr   string // Listen address for cmd/qviz-sim
	LogLevel  string
	LogPretty bool
	FPS       int
	Width     int // Framebuffer width in pixels
	Height    int // Framebuffer height in pixels
	Shots     int // Default measurement shots per simulation
	StepMs    int // Per-gate delay for circuit playback
	Preset    string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		SimURL:    getEnv("QVIZ_SIM_URL", ""),
		SimAddr:   getEnv("QVIZ_SIM_ADDR", ":5001"),
		LogLevel:  getEnv("QVIZ_LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("QVIZ_LOG_PRETTY", true),
		FPS:       getEnvAsInt("QVIZ_FPS", 60),
		Width:     getEnvAsInt("QVIZ_WIDTH", 480),
		Height:    getEnvAsInt("QVIZ_HEIGHT", 320),
		Shots:     getEnvAsInt("QVIZ_SHOTS", 1000),
		StepMs:    getEnvAsInt("QVIZ_STEP_MS", 1000),
		Preset:    getEnv("QVIZ_PRESET", "bell"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid fps: %d", c.FPS)
	}
	if c.Shots < 0 {
		return fmt.Errorf("invalid shots: %d", c.Shots)
	}
	if c.StepMs < 0 {
		return fmt.Errorf("invalid step delay: %d", c.StepMs)
	}
	if c.SimURL != "" {
		u, err := url.Parse(c.SimURL)
		if err != nil {
			return fmt.Errorf("invalid simulator url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid simulator url scheme %q", u.Scheme)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

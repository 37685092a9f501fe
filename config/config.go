package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ruslanjabari/video-to-ascii/render"
)

// Config holds all application configuration values.
type Config struct {
	File        string
	Shm         string
	Strategy    string
	Output      string
	Server      bool
	Host        string
	Port        int
	PreviewPort int

	Kind render.Kind
}

// New creates a Config populated from command-line flags, with defaults
// taken from the environment (a .env file is loaded when present).
func New() *Config {
	godotenv.Load()

	cfg := &Config{}
	flag.StringVar(&cfg.File, "f", "", "input video file")
	flag.StringVar(&cfg.Shm, "shm", envOr("VTA_SHM", ""),
		"shared memory name under /dev/shm to stream live frames from")
	flag.StringVar(&cfg.Strategy, "strategy", envOr("VTA_STRATEGY", "ascii-color"),
		"render strategy: ascii-color, just-ascii, filled-ascii, adaptive, cinematic")
	flag.StringVar(&cfg.Output, "o", "", "output file to export rendered frames to")
	flag.BoolVar(&cfg.Server, "server", false, "run as SSH server")
	flag.StringVar(&cfg.Host, "host", envOr("VTA_HOST", "0.0.0.0"), "SSH server host")
	flag.IntVar(&cfg.Port, "port", envIntOr("VTA_PORT", 2222), "SSH server port")
	flag.IntVar(&cfg.PreviewPort, "preview-port", 0, "HTTP preview port (0 disables)")
	flag.Parse()

	return cfg
}

// Validate fails fast on configuration errors, before any session starts.
func (c *Config) Validate() error {
	if c.File == "" && c.Shm == "" {
		return fmt.Errorf("missing input: give a video file (-f) or a shared memory name (-shm)")
	}
	if c.Shm != "" && (c.Server || c.Output != "") {
		return fmt.Errorf("shared memory input supports local playback only")
	}
	if c.File != "" {
		if _, err := os.Stat(c.File); err != nil {
			return fmt.Errorf("video file %q: %w", c.File, err)
		}
	}
	kind, err := render.ParseKind(c.Strategy)
	if err != nil {
		return err
	}
	c.Kind = kind
	return nil
}

// Addr is the SSH listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PreviewAddr is the HTTP preview listen address.
func (c *Config) PreviewAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.PreviewPort)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

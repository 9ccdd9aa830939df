package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Functions

// ApplyEnv overrides listener addresses with values from
// the process environment, reading a local .env file first
// when one exists. This enables host adaptions without
// maintaining a second config file.
func (c *Config) ApplyEnv() {

	// A missing .env file is fine, plain environment
	// variables still apply.
	_ = godotenv.Load(".env")

	if addr := os.Getenv("FRAME_MOCK_IMAP_ADDR"); addr != "" {
		c.IMAP.ListenAddr = addr
	}

	if addr := os.Getenv("FRAME_MOCK_SMTP_ADDR"); addr != "" {
		c.SMTP.ListenAddr = addr
	}

	if addr := os.Getenv("FRAME_MOCK_PROMETHEUS_ADDR"); addr != "" {
		c.Prometheus.ListenAddr = addr
	}
}

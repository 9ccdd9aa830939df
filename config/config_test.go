package config_test

import (
	"testing"

	"github.com/dhanji/frame/config"
	"github.com/stretchr/testify/assert"
)

// Functions

// TestLoadConfig executes a black-box test on the
// implemented functionalities to load a TOML config file.
func TestLoadConfig(t *testing.T) {

	// Try to load a broken config file. This should fail.
	_, err := config.LoadConfig("broken-config.toml")
	assert.NotNil(t, err, "Loading broken-config.toml should fail")

	// A missing file should fail as well.
	_, err = config.LoadConfig("does-not-exist.toml")
	assert.NotNil(t, err, "Loading a missing config file should fail")

	// Now load a valid config.
	conf, err := config.LoadConfig("test-config.toml")
	assert.Nil(t, err, "Loading test-config.toml should succeed")

	assert.Equal(t, "127.0.0.1:2143", conf.IMAP.ListenAddr, "IMAP listen address should come from the file")
	assert.Equal(t, "Test IMAP Greeting", conf.IMAP.Greeting, "IMAP greeting should come from the file")
	assert.Equal(t, "127.0.0.1:2587", conf.SMTP.ListenAddr, "SMTP listen address should come from the file")
	assert.Equal(t, "127.0.0.1:9099", conf.Prometheus.ListenAddr, "Prometheus address should come from the file")

	// Fields absent from the file keep their defaults.
	assert.Equal(t, "Mock SMTP Server Ready", conf.SMTP.Greeting, "SMTP greeting should keep its default")
}

// TestDefaultConfig verifies the built-in local testing
// defaults.
func TestDefaultConfig(t *testing.T) {

	conf := config.DefaultConfig()

	assert.Equal(t, "127.0.0.1:1143", conf.IMAP.ListenAddr, "Default IMAP port should be 1143")
	assert.Equal(t, "127.0.0.1:1587", conf.SMTP.ListenAddr, "Default SMTP port should be 1587")
	assert.Equal(t, "", conf.Prometheus.ListenAddr, "Metrics should be disabled by default")
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]string{"-f", "catalog.txt"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "catalog.txt", cfg.CatalogPath)
}

func TestParseOverridesPortAndTimeout(t *testing.T) {
	cfg, err := Parse([]string{"-p", "3000", "-t", "10", "-f", "catalog.txt"})
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 10, cfg.Timeout)
}

func TestParseRequiresCatalogPath(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestParseRejectsOddArgumentCount(t *testing.T) {
	_, err := Parse([]string{"-f"})
	assert.Error(t, err)
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	_, err := Parse([]string{"-x", "1", "-f", "catalog.txt"})
	assert.Error(t, err)
}

func TestParseRejectsRepeatedFlag(t *testing.T) {
	_, err := Parse([]string{"-p", "1", "-p", "2", "-f", "catalog.txt"})
	assert.Error(t, err)
}

func TestParseRejectsOutOfRangePort(t *testing.T) {
	_, err := Parse([]string{"-p", "70000", "-f", "catalog.txt"})
	assert.Error(t, err)
}

func TestParseRejectsOutOfRangeTimeout(t *testing.T) {
	_, err := Parse([]string{"-t", "0", "-f", "catalog.txt"})
	assert.Error(t, err)

	_, err = Parse([]string{"-t", "86401", "-f", "catalog.txt"})
	assert.Error(t, err)
}

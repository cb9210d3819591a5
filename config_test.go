package ftp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.validate())
}

func TestConfig_Validate_MissingHost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = ""
	err := cfg.validate()
	assert.Error(t, err)

	var ferr *Error
	assert.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindArgument, ferr.Kind)
}

func TestConfig_Validate_BadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 70000
	assert.Error(t, cfg.validate())

	cfg2 := DefaultConfig()
	cfg2.Port = 0
	assert.Error(t, cfg2.validate())
}

func TestConfig_Validate_NonPositiveTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 0
	assert.Error(t, cfg.validate())

	cfg2 := DefaultConfig()
	cfg2.KeepAlive = -1 * time.Second
	assert.Error(t, cfg2.validate())
}

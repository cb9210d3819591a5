package ftp

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the connection parameters named in the base spec's
// ConnectionConfig entity (§3): host, port, credentials, and the two
// timeouts. It is validated once, in Connect, and is immutable afterward.
type Config struct {
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	User     string `validate:"required"`
	Password string

	// Timeout bounds dial attempts and each control/data-channel I/O call.
	Timeout time.Duration `validate:"gt=0"`
	// KeepAlive is the idle interval after which a NOOP is sent to hold the
	// control connection open. Zero disables the keepalive goroutine
	// entirely (spec §5 permits omitting it).
	KeepAlive time.Duration `validate:"gte=0"`
}

// DefaultConfig returns the configuration defaults enumerated in §6.
func DefaultConfig() Config {
	return Config{
		Host:      "localhost",
		Port:      21,
		User:      "anonymous",
		Password:  "anonymous",
		Timeout:   10 * time.Second,
		KeepAlive: 10 * time.Second,
	}
}

func (cfg Config) validate() error {
	if err := validate.Struct(cfg); err != nil {
		return wrapError(KindArgument, err)
	}
	return nil
}

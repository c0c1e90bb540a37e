package main

import (
	"time"

	"github.com/samber/lo"
)

type Config struct {
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=16"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	InspectPort          int           `env:"INSPECT_PORT"`
}

// maxMessageLimit is the hard upper bound on messages returned by a
// channel read. LIMIT_MESSAGES can lower it for constrained
// deployments, never raise it.
const maxMessageLimit = 100

func messageLimit(configured *int) *int {
	if configured == nil || *configured < 1 || *configured > maxMessageLimit {
		return lo.ToPtr(maxMessageLimit)
	}
	return configured
}

// Package env provides config values read once from the process environment.
package env

import (
	"context"
	"crypto/ed25519"
	"os"
	"strings"
	"time"

	"github.com/divvyexchange/bootstrap/pkg/config"
	"github.com/divvyexchange/bootstrap/pkg/config/wrapper"
)

type conf struct {
	val string
}

// NewConfig snapshots the variable named key, upper cased.
func NewConfig(key string) config.Config {
	return &conf{
		val: strings.TrimSpace(os.Getenv(strings.ToUpper(key))),
	}
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	if len(c.val) == 0 {
		return nil, config.ErrNoValue
	}

	return []byte(c.val), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}

func NewPublicKeyConfig(key string, defaultValue ed25519.PublicKey) config.PublicKey {
	return wrapper.NewPublicKeyConfig(NewConfig(key), defaultValue)
}

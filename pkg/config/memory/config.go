// Package memory provides a mutable config.Config for tests and manual
// overrides.
package memory

import (
	"context"
	"reflect"
	"sync"

	"github.com/pkg/errors"

	"github.com/divvyexchange/bootstrap/pkg/config"
)

var errDeveloperInduced = errors.New("in memory config: developer induced error")

type Config struct {
	stateMu  sync.RWMutex
	value    interface{}
	err      error
	shutdown bool

	// zeroIsUnset reports zero values as config.ErrNoValue.
	zeroIsUnset bool
}

// NewConfig returns a new in memory config. A nil value means no value is set.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// NewOptionalConfig is NewConfig, except that zero values, typed nils and
// empty slices also read as no value. Overrides whose zero value means "use
// the default" are passed through it.
func NewOptionalConfig(value interface{}) *Config {
	return &Config{value: value, zeroIsUnset: true}
}

func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.err != nil:
		return nil, c.err
	case c.value == nil, c.zeroIsUnset && isZero(c.value):
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

func isZero(value interface{}) bool {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Map {
		return v.Len() == 0
	}
	return v.IsZero()
}

func (c *Config) Shutdown() {
	c.stateMu.Lock()
	c.shutdown = true
	c.stateMu.Unlock()
}

func (c *Config) SetValue(value interface{}) {
	c.stateMu.Lock()
	c.value = value
	c.stateMu.Unlock()
}

// ClearValue makes subsequent Get calls return config.ErrNoValue.
func (c *Config) ClearValue() {
	c.SetValue(nil)
}

// InduceErrors makes subsequent Get calls fail until StopInducingErrors.
func (c *Config) InduceErrors() {
	c.stateMu.Lock()
	c.err = errDeveloperInduced
	c.stateMu.Unlock()
}

func (c *Config) StopInducingErrors() {
	c.stateMu.Lock()
	c.err = nil
	c.stateMu.Unlock()
}

package wrapper

import (
	"context"
	"crypto/ed25519"
	"strconv"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/divvyexchange/bootstrap/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// ValueConfig adapts an untyped config.Config into a typed one.
type ValueConfig[T any] struct {
	override     config.Config
	defaultValue T
	convert      func(interface{}) (T, error)

	stateMu   sync.RWMutex
	lastValue T
}

func newValueConfig[T any](override config.Config, defaultValue T, convert func(interface{}) (T, error)) *ValueConfig[T] {
	return &ValueConfig[T]{
		override:     override,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. A best-effort
// attempt is made to return the last known value
func (c *ValueConfig[T]) GetSafe(ctx context.Context) (T, error) {
	override, err := c.override.Get(ctx)

	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if err == config.ErrNoValue {
		c.lastValue = c.defaultValue
		return c.defaultValue, nil
	} else if err != nil {
		return c.lastValue, err
	}

	newValue, err := c.convert(override)
	if err != nil {
		return c.lastValue, err
	}

	c.lastValue = newValue
	return newValue, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *ValueConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *ValueConfig[T]) Shutdown() {
	c.override.Shutdown()
}

// NewBoolConfig returns a new bool config utility wrapper
func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return newValueConfig(override, defaultValue, func(v interface{}) (bool, error) {
		switch v := v.(type) {
		case []byte:
			return strconv.ParseBool(string(v))
		case bool:
			return v, nil
		default:
			return false, ErrUnsuportedConversion
		}
	})
}

// NewUint64Config returns a new uint64 config utility wrapper
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return newValueConfig(override, defaultValue, func(v interface{}) (uint64, error) {
		switch v := v.(type) {
		case []byte:
			return strconv.ParseUint(string(v), 10, 64)
		case uint64:
			return v, nil
		case uint:
			return uint64(v), nil
		default:
			return 0, ErrUnsuportedConversion
		}
	})
}

// NewStringConfig returns a new string config utility wrapper
func NewStringConfig(override config.Config, defaultValue string) config.String {
	return newValueConfig(override, defaultValue, func(v interface{}) (string, error) {
		switch v := v.(type) {
		case []byte:
			return string(v), nil
		case string:
			return v, nil
		default:
			return "", ErrUnsuportedConversion
		}
	})
}

// NewDurationConfig returns a new duration config utility wrapper
func NewDurationConfig(override config.Config, defaultValue time.Duration) config.Duration {
	return newValueConfig(override, defaultValue, func(v interface{}) (time.Duration, error) {
		switch v := v.(type) {
		case []byte:
			return time.ParseDuration(string(v))
		case time.Duration:
			return v, nil
		default:
			return 0, ErrUnsuportedConversion
		}
	})
}

// NewPublicKeyConfig returns a config for a base58 encoded ed25519 public key.
func NewPublicKeyConfig(override config.Config, defaultValue ed25519.PublicKey) config.PublicKey {
	return newValueConfig(override, defaultValue, func(v interface{}) (ed25519.PublicKey, error) {
		var encoded string
		switch v := v.(type) {
		case []byte:
			encoded = string(v)
		case string:
			encoded = v
		case ed25519.PublicKey:
			if len(v) != ed25519.PublicKeySize {
				return nil, errors.Errorf("config: invalid public key length %d", len(v))
			}
			return v, nil
		default:
			return nil, ErrUnsuportedConversion
		}

		decoded, err := base58.Decode(encoded)
		if err != nil {
			return nil, errors.Wrap(err, "config: invalid base58 public key")
		}
		if len(decoded) != ed25519.PublicKeySize {
			return nil, errors.Errorf("config: invalid public key length %d", len(decoded))
		}
		return decoded, nil
	})
}

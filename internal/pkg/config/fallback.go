// Package config loads environment configuration with validated fallback:
// an invalid value never aborts startup, it falls back to the default and
// surfaces a warning the caller is expected to log and count. The worker
// uses it for settings where refusing to start would be worse than running
// with defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Fallback carries a loaded value together with the warning produced when
// the environment value was rejected. Warning is empty when the value came
// through clean (from the environment or an unset default).
type Fallback[T any] struct {
	Value   T
	Warning string
}

// Applied reports whether the default was substituted for a bad value.
func (f Fallback[T]) Applied() bool {
	return f.Warning != ""
}

func rejected[T any](key, raw string, err error, def T) Fallback[T] {
	return Fallback[T]{
		Value:   def,
		Warning: fmt.Sprintf("invalid %s=%q: %v, falling back to %v", key, raw, err, def),
	}
}

// String loads key, validating with validate when non-nil. An unset or
// empty variable yields the default without a warning.
func String(key, def string, validate func(string) error) Fallback[string] {
	raw := os.Getenv(key)
	if raw == "" {
		return Fallback[string]{Value: def}
	}
	if validate != nil {
		if err := validate(raw); err != nil {
			return rejected(key, raw, err, def)
		}
	}
	return Fallback[string]{Value: raw}
}

// Duration loads key as a Go duration string ("30m", "1h30m").
func Duration(key string, def time.Duration, validate func(time.Duration) error) Fallback[time.Duration] {
	raw := os.Getenv(key)
	if raw == "" {
		return Fallback[time.Duration]{Value: def}
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return rejected(key, raw, err, def)
	}
	if validate != nil {
		if err := validate(d); err != nil {
			return rejected(key, raw, err, def)
		}
	}
	return Fallback[time.Duration]{Value: d}
}

// Int loads key as a base-10 integer.
func Int(key string, def int, validate func(int) error) Fallback[int] {
	raw := os.Getenv(key)
	if raw == "" {
		return Fallback[int]{Value: def}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return rejected(key, raw, fmt.Errorf("not an integer"), def)
	}
	if validate != nil {
		if err := validate(n); err != nil {
			return rejected(key, raw, err, def)
		}
	}
	return Fallback[int]{Value: n}
}

// Bool loads key with strconv.ParseBool semantics ("1", "t", "true", ...).
func Bool(key string, def bool) Fallback[bool] {
	raw := os.Getenv(key)
	if raw == "" {
		return Fallback[bool]{Value: def}
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return rejected(key, raw, fmt.Errorf("not a boolean"), def)
	}
	return Fallback[bool]{Value: b}
}

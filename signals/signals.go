// Package signals holds the deterministic signal producers. Each producer
// inspects one aspect of its input and returns a bounded risk contribution
// with human-readable findings. Producers never return errors: an
// unavailable capability, a timeout or malformed data all degrade to zero
// points, optionally with one diagnostic signal.
package signals

import "errors"

// ErrUnavailable is returned by capability implementations that are not
// configured or not installed.
var ErrUnavailable = errors.New("capability unavailable")

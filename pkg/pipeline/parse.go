package pipeline

import (
	"github.com/matzehuels/qtranspile/pkg/cache"
	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/qasm"
)

// Parse reads OpenQASM 2.0 source and returns the circuit with the content
// hash that keys its cache entries.
func Parse(name, src string) (*circuit.Circuit, string, error) {
	if len(src) > MaxSourceBytes {
		return nil, "", errors.New(errors.ErrCodeInvalidInput,
			"source too large (%d bytes, max %d)", len(src), MaxSourceBytes)
	}
	c, err := qasm.ParseString(name, src)
	if err != nil {
		return nil, "", err
	}
	return c, cache.HashSource(src), nil
}

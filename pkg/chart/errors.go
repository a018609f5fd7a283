package chart

import "errors"

// Typed error kinds surfaced by engine constructors and AddData.  Callers test with
// errors.Is; every failure path leaves the engine state unchanged.
var (
	// ErrInvalidConfiguration indicates a chart type incompatible with the given
	// subgroup size, span, window, or other construction parameter.
	ErrInvalidConfiguration = errors.New("invalid chart configuration")

	// ErrUnsupportedSubgroupSize indicates that no statistical constants exist for
	// the requested subgroup size.  Chart formulas for very large subgroups are
	// statistically unreliable and intentionally unsupported.
	ErrUnsupportedSubgroupSize = errors.New("unsupported subgroup size")

	// ErrSampleSizeMismatch indicates a subgroup whose length does not match the
	// engine's fixed subgroup size.
	ErrSampleSizeMismatch = errors.New("sample size mismatch")

	// ErrEmptySample indicates a zero-length subgroup passed to AddData.
	ErrEmptySample = errors.New("empty sample")
)

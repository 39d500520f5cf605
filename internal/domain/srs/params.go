package srs

import "github.com/phrazzld/mediqa-api/internal/domain"

// Quality bounds for a review self-rating.
const (
	MinQuality = 0
	MaxQuality = 5
)

// Params defines all configurable parameters for the spaced-repetition
// algorithm.
type Params struct {
	// Core limits
	MinEaseFactor     float64
	InitialEaseFactor float64
	MinIntervalDays   int
	MaxIntervalDays   int

	// PassThreshold is the lowest quality counted as successful recall.
	PassThreshold int

	// EarlyIntervals is the fixed interval ladder climbed on the first
	// successful reviews before the ease factor takes over: a card at
	// EarlyIntervals[i] days moves to EarlyIntervals[i+1].
	EarlyIntervals []int
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance.
type ParamsConfig struct {
	MinEaseFactor     float64
	InitialEaseFactor float64
	MinIntervalDays   int
	MaxIntervalDays   int
	PassThreshold     int
	EarlyIntervals    []int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     domain.MinEaseFactor,
		InitialEaseFactor: domain.InitialEaseFactor,
		MinIntervalDays:   domain.MinIntervalDays,
		MaxIntervalDays:   domain.MaxIntervalDays,

		// Quality 3 and above counts as successful recall.
		PassThreshold: 3,

		// 1 day, then 6, then 25; afterwards interval * ease factor.
		EarlyIntervals: []int{1, 6, 25},
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero-valued fields keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}
	if config.MinIntervalDays > 0 {
		params.MinIntervalDays = config.MinIntervalDays
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}
	if config.PassThreshold > 0 {
		params.PassThreshold = config.PassThreshold
	}
	if len(config.EarlyIntervals) > 0 {
		params.EarlyIntervals = config.EarlyIntervals
	}

	return params
}

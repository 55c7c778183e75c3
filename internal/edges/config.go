package edges

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ThresholdPolicy selects how the hysteresis thresholds are obtained.
type ThresholdPolicy int

const (
	// ThresholdFixed uses Config.High and Config.Low as absolute values on the
	// unnormalised gradient scale. Output depends only on the pixels.
	ThresholdFixed ThresholdPolicy = iota

	// ThresholdRelative derives high = HighRatio*max(magnitude) and
	// low = LowRatio*high for each image.
	ThresholdRelative
)

func (p ThresholdPolicy) String() string {
	switch p {
	case ThresholdFixed:
		return "fixed"
	case ThresholdRelative:
		return "relative"
	default:
		return fmt.Sprintf("ThresholdPolicy(%d)", int(p))
	}
}

// ParseThresholdPolicy accepts "fixed" or "relative" (case-insensitive).
func ParseThresholdPolicy(s string) (ThresholdPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "":
		return ThresholdFixed, nil
	case "relative":
		return ThresholdRelative, nil
	default:
		return 0, errors.Wrapf(ErrInvalidInput, "unknown threshold policy %q", s)
	}
}

// Default threshold values.
const (
	DefaultHigh      = 40.0
	DefaultLow       = 15.0
	DefaultHighRatio = 0.15
	DefaultLowRatio  = 0.4
)

// Config controls a Detector. The zero value is not valid; start from
// DefaultConfig.
type Config struct {
	Policy ThresholdPolicy

	// High and Low apply with ThresholdFixed. 0 <= Low < High.
	High float64
	Low  float64

	// HighRatio and LowRatio apply with ThresholdRelative.
	// 0 < HighRatio <= 1 and 0 < LowRatio < 1.
	HighRatio float64
	LowRatio  float64

	// Parallel splits the smoothing, gradient and suppression stages by rows
	// across goroutines. Output is identical either way.
	Parallel bool
}

// DefaultConfig returns fixed thresholds high=40, low=15, serial execution.
func DefaultConfig() Config {
	return Config{
		Policy:    ThresholdFixed,
		High:      DefaultHigh,
		Low:       DefaultLow,
		HighRatio: DefaultHighRatio,
		LowRatio:  DefaultLowRatio,
	}
}

// WithFixedThresholds returns a copy using absolute thresholds.
func (c Config) WithFixedThresholds(high, low float64) Config {
	c.Policy = ThresholdFixed
	c.High = high
	c.Low = low
	return c
}

// WithRelativeThresholds returns a copy using thresholds relative to the
// image's maximum gradient.
func (c Config) WithRelativeThresholds(highRatio, lowRatio float64) Config {
	c.Policy = ThresholdRelative
	c.HighRatio = highRatio
	c.LowRatio = lowRatio
	return c
}

// WithParallel returns a copy with row parallelism switched on or off.
func (c Config) WithParallel(on bool) Config {
	c.Parallel = on
	return c
}

// Validate checks the thresholds of the selected policy. NaN values fail.
func (c Config) Validate() error {
	switch c.Policy {
	case ThresholdFixed:
		if !(c.Low >= 0) || !(c.High > c.Low) {
			return errors.Wrapf(ErrInvalidInput, "fixed thresholds need 0 <= low < high, got low=%v high=%v", c.Low, c.High)
		}
	case ThresholdRelative:
		if !(c.HighRatio > 0 && c.HighRatio <= 1) {
			return errors.Wrapf(ErrInvalidInput, "high ratio must be in (0, 1], got %v", c.HighRatio)
		}
		if !(c.LowRatio > 0 && c.LowRatio < 1) {
			return errors.Wrapf(ErrInvalidInput, "low ratio must be in (0, 1), got %v", c.LowRatio)
		}
	default:
		return errors.Wrapf(ErrInvalidInput, "unknown threshold policy %v", c.Policy)
	}
	return nil
}

func (c Config) thresholds(maxGradient float64) thresholds {
	if c.Policy == ThresholdRelative {
		high := c.HighRatio * maxGradient
		return thresholds{high: high, low: c.LowRatio * high}
	}
	return thresholds{high: c.High, low: c.Low}
}

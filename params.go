package forestfire

import "math"

// ConfiguredParameters holds the user-facing, realistic-unit knobs for a
// simulation. It is the single source of truth the simulation loop owns;
// [Derive] turns it into the per-tick [DerivedParameters] the kernel reads.
type ConfiguredParameters struct {
	Width, Height int // forest dimensions, in cells

	TicksPerMonth   float32
	MonthsPerSecond float32

	LightningStrikesPerYearPerAcre float32

	TreeGrowthYears float32
	TreeDeathYears  float32

	UnderbrushTreeGrowthHindrance float32 // in [0,1]
	TreeUnderbrushGeneration      float32
	TreeDeathUnderbrush           float32

	TreeFireDuration       uint32 // ticks
	UnderbrushFireDuration uint32 // ticks

	FireSpreadRate float32 // in [0,1]

	TreeFlammability       float32
	UnderbrushFlammability float32
}

// Acres returns the derived forest area: width*height/4047 (cells per acre
// at a nominal one-meter cell size).
func (c ConfiguredParameters) Acres() float32 {
	return float32(c.Width) * float32(c.Height) / 4047
}

// DefaultConfiguredParameters returns sensible realistic defaults for a grid
// of the given size, modeled on a slow-burning, slow-growing forest: one
// lightning strike per 45 years per acre, trees taking 150 years to mature
// and 200 years to die of old age.
func DefaultConfiguredParameters(width, height int) ConfiguredParameters {
	return ConfiguredParameters{
		Width:                           width,
		Height:                          height,
		TicksPerMonth:                   30,
		MonthsPerSecond:                 1,
		LightningStrikesPerYearPerAcre:  1.0 / 45.0,
		TreeGrowthYears:                 150,
		TreeDeathYears:                  200,
		UnderbrushTreeGrowthHindrance:   0,
		TreeUnderbrushGeneration:        0.0001,
		TreeDeathUnderbrush:             0.01,
		TreeFireDuration:                1,
		UnderbrushFireDuration:          1,
		FireSpreadRate:                  1,
		TreeFlammability:                0.5,
		UnderbrushFlammability:          1,
	}
}

// Clamp saturates every field to its sensible range: probabilities and
// hindrance factors to [0,1], durations and rates to >=0. Out-of-range
// parameters are clamped silently per the error-handling design; they are
// never signaled as errors.
func (c ConfiguredParameters) Clamp() ConfiguredParameters {
	c.Width = maxInt(c.Width, 0)
	c.Height = maxInt(c.Height, 0)
	c.TicksPerMonth = maxFloat32(c.TicksPerMonth, 0)
	c.MonthsPerSecond = maxFloat32(c.MonthsPerSecond, 0)
	c.LightningStrikesPerYearPerAcre = maxFloat32(c.LightningStrikesPerYearPerAcre, 0)
	c.TreeGrowthYears = maxFloat32(c.TreeGrowthYears, 0)
	c.TreeDeathYears = maxFloat32(c.TreeDeathYears, 0)
	c.UnderbrushTreeGrowthHindrance = clamp01(c.UnderbrushTreeGrowthHindrance)
	c.TreeUnderbrushGeneration = maxFloat32(c.TreeUnderbrushGeneration, 0)
	c.TreeDeathUnderbrush = maxFloat32(c.TreeDeathUnderbrush, 0)
	c.FireSpreadRate = clamp01(c.FireSpreadRate)
	c.TreeFlammability = maxFloat32(c.TreeFlammability, 0)
	c.UnderbrushFlammability = maxFloat32(c.UnderbrushFlammability, 0)
	return c
}

// DerivedParameters holds the per-tick probabilities and counts the rule
// kernel reads, recomputed by [Derive] whenever ConfiguredParameters
// changes. Comparable with ==. The stepping engine stores each new value as
// given; it does not compare it with the previous one.
type DerivedParameters struct {
	TickRate uint32

	LightningFrequency float32 // expected global ignitions per tick
	TreeGrowthRate     float32
	TreeDeathRate      float32

	UnderbrushTreeGrowthHindrance float32
	TreeUnderbrushGeneration      float32
	TreeDeathUnderbrush           float32

	TreeFireDuration       uint32
	UnderbrushFireDuration uint32

	FireSpreadRate float32

	TreeFlammability       float32
	UnderbrushFlammability float32
}

// Derive computes per-tick DerivedParameters from the user-facing
// ConfiguredParameters. cfg is clamped first so callers never need to clamp
// themselves.
func Derive(cfg ConfiguredParameters) DerivedParameters {
	cfg = cfg.Clamp()

	acres := cfg.Acres()
	tickRate := uint32(math.Round(float64(cfg.TicksPerMonth * cfg.MonthsPerSecond)))
	ticksPerYear := 12 * cfg.TicksPerMonth

	var lightningFrequency, treeGrowthRate, treeDeathRate float32
	if ticksPerYear > 0 {
		lightningFrequency = cfg.LightningStrikesPerYearPerAcre * acres / ticksPerYear
		if cfg.TreeGrowthYears > 0 {
			treeGrowthRate = 1 / (ticksPerYear * cfg.TreeGrowthYears)
		}
		if cfg.TreeDeathYears > 0 {
			treeDeathRate = 1 / (ticksPerYear * cfg.TreeDeathYears)
		}
	}

	return DerivedParameters{
		TickRate:                      tickRate,
		LightningFrequency:            lightningFrequency,
		TreeGrowthRate:                clamp01(treeGrowthRate),
		TreeDeathRate:                 clamp01(treeDeathRate),
		UnderbrushTreeGrowthHindrance: cfg.UnderbrushTreeGrowthHindrance,
		TreeUnderbrushGeneration:      cfg.TreeUnderbrushGeneration,
		TreeDeathUnderbrush:           cfg.TreeDeathUnderbrush,
		TreeFireDuration:              cfg.TreeFireDuration,
		UnderbrushFireDuration:        cfg.UnderbrushFireDuration,
		FireSpreadRate:                cfg.FireSpreadRate,
		TreeFlammability:              cfg.TreeFlammability,
		UnderbrushFlammability:        cfg.UnderbrushFlammability,
	}
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func maxFloat32(v, min float32) float32 {
	if v < min {
		return min
	}
	return v
}

func maxInt(v, min int) int {
	if v < min {
		return min
	}
	return v
}

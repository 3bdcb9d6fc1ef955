package forestfire

import "testing"

func TestClampSaturatesOutOfRangeFields(t *testing.T) {
	cfg := ConfiguredParameters{
		Width: -5, Height: -1,
		TicksPerMonth: -1, MonthsPerSecond: -1,
		LightningStrikesPerYearPerAcre: -1,
		UnderbrushTreeGrowthHindrance:  2,
		FireSpreadRate:                 -0.5,
		TreeFlammability:               -1,
		UnderbrushFlammability:         -1,
	}
	got := cfg.Clamp()
	if got.Width != 0 || got.Height != 0 {
		t.Errorf("negative dimensions not clamped to 0: %+v", got)
	}
	if got.TicksPerMonth != 0 || got.MonthsPerSecond != 0 {
		t.Errorf("negative rates not clamped to 0: %+v", got)
	}
	if got.UnderbrushTreeGrowthHindrance != 1 {
		t.Errorf("hindrance = %v, want clamped to 1", got.UnderbrushTreeGrowthHindrance)
	}
	if got.FireSpreadRate != 0 {
		t.Errorf("fire spread rate = %v, want clamped to 0", got.FireSpreadRate)
	}
}

func TestAcres(t *testing.T) {
	cfg := ConfiguredParameters{Width: 4047, Height: 1}
	if got := cfg.Acres(); got != 1 {
		t.Fatalf("Acres() = %v, want 1", got)
	}
}

func TestDeriveZeroTicksPerYearGuard(t *testing.T) {
	cfg := DefaultConfiguredParameters(10, 10)
	cfg.TicksPerMonth = 0
	d := Derive(cfg)
	if d.LightningFrequency != 0 || d.TreeGrowthRate != 0 || d.TreeDeathRate != 0 {
		t.Fatalf("Derive with ticks_per_year=0 produced non-zero rates: %+v", d)
	}
	if d.TickRate != 0 {
		t.Fatalf("TickRate = %d, want 0", d.TickRate)
	}
}

func TestDeriveTickRateRounding(t *testing.T) {
	cfg := DefaultConfiguredParameters(10, 10)
	cfg.TicksPerMonth = 30
	cfg.MonthsPerSecond = 1
	d := Derive(cfg)
	if d.TickRate != 30 {
		t.Fatalf("TickRate = %d, want 30", d.TickRate)
	}
}

func TestDerivePassThroughFields(t *testing.T) {
	cfg := DefaultConfiguredParameters(10, 10)
	cfg.TreeFireDuration = 7
	cfg.UnderbrushFireDuration = 3
	cfg.FireSpreadRate = 0.25
	d := Derive(cfg)
	if d.TreeFireDuration != 7 || d.UnderbrushFireDuration != 3 {
		t.Fatalf("fire durations did not pass through: %+v", d)
	}
	if d.FireSpreadRate != 0.25 {
		t.Fatalf("FireSpreadRate did not pass through: %v", d.FireSpreadRate)
	}
}

func TestDeriveLightningFrequencyScalesWithAcreage(t *testing.T) {
	small := DefaultConfiguredParameters(10, 10)
	large := DefaultConfiguredParameters(100, 100)
	dSmall := Derive(small)
	dLarge := Derive(large)
	if dLarge.LightningFrequency <= dSmall.LightningFrequency {
		t.Fatalf("larger forest should have higher expected lightning frequency: small=%v large=%v", dSmall.LightningFrequency, dLarge.LightningFrequency)
	}
}

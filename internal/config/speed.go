package config

// SpeedPreset represents a named animation pace.
type SpeedPreset string

const (
	SpeedSlow    SpeedPreset = "slow"
	SpeedNormal  SpeedPreset = "normal"
	SpeedFast    SpeedPreset = "fast"
	SpeedInstant SpeedPreset = "instant"
)

// SpeedPresets lists the accepted preset names.
func SpeedPresets() []SpeedPreset {
	return []SpeedPreset{SpeedSlow, SpeedNormal, SpeedFast, SpeedInstant}
}

// IsValidSpeed reports whether s names a preset. The empty string is valid
// and keeps the configured timing.
func IsValidSpeed(s string) bool {
	if s == "" {
		return true
	}
	for _, p := range SpeedPresets() {
		if string(p) == s {
			return true
		}
	}
	return false
}

// ApplySpeedPreset scales the configured timing. Normal keeps it as is;
// instant removes all delays so a turn resolves on the next tick.
func ApplySpeedPreset(cfg *LaddersConfig, preset SpeedPreset) {
	switch preset {
	case SpeedSlow:
		cfg.Timing.StepMillis *= 2
		cfg.Timing.TransitionMillis *= 2
	case SpeedFast:
		cfg.Timing.StepMillis /= 3
		cfg.Timing.TransitionMillis /= 3
	case SpeedInstant:
		cfg.Timing.StepMillis = 0
		cfg.Timing.TransitionMillis = 0
	}
}

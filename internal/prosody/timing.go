package prosody

import "github.com/tgeczy/speechbox/internal/pack"

// baseDurationMs holds the reference per-class segment durations (§4.8),
// divided by effective speed and stress in durationFor and then adjusted
// by applyContextDurationAdjustments.
var baseDurationMs = map[pack.Class]float64{
	pack.ClassVowel:     60,
	pack.ClassStop:      6,
	pack.ClassTap:       14,
	pack.ClassFricative: 45,
	pack.ClassAffricate: 50,
	pack.ClassNasal:     50,
	pack.ClassLiquid:    45,
	pack.ClassSemivowel: 40,
	pack.ClassTrill:     60,
	pack.ClassOther:     40,
	pack.ClassSilence:   20,
}

const postStopAspirationMs = 20
const preStopGapMs = 40
const vowelHiatusGapMs = 20

// durationFor computes a single token's base duration (ms) before context
// adjustments, given its class, stress, lengthened flag and effective
// speed.
func durationFor(class pack.Class, stress int, lengthened bool, settings pack.Settings, speed float64) float64 {
	base, ok := baseDurationMs[class]
	if !ok {
		base = baseDurationMs[pack.ClassOther]
	}
	eff := speed
	if eff <= 0 {
		eff = 1.0
	}
	d := base / eff
	switch stress {
	case 1:
		if settings.PrimaryStressDiv > 0 {
			d /= settings.PrimaryStressDiv
		}
	case 2:
		if settings.SecondaryStressDiv > 0 {
			d /= settings.SecondaryStressDiv
		}
	}
	if lengthened {
		scale := settings.LengthenedScale
		if scale <= 0 {
			scale = 1.0
		}
		d *= scale
	}
	return d
}

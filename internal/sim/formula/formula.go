// Package formula holds the numeric rules the engine consumes but does not own:
// sustenance penalties, the XP curve and combat damage. All functions are pure.
package formula

import "realmtick.io/internal/sim/model"

// SustenancePenalty is the multiplier applied to combat power and gathering yield.
// hungerState is ignored for counter-based variants, where decayStage (0..3) is used.
func SustenancePenalty(hungerState model.HungerState, decayStage int) float64 {
	m := 1.0
	switch hungerState {
	case model.HungerHungry:
		m = 0.9
	case model.HungerStarving:
		m = 0.75
	case model.HungerIncapacitated:
		m = 0.5
	}
	switch {
	case decayStage >= 3:
		m *= 0.5
	case decayStage == 2:
		m *= 0.75
	case decayStage == 1:
		m *= 0.9
	}
	return m
}

// XPForLevel is the cumulative XP required to reach level (level 1 needs 0).
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return 50 * n * (n + 1)
}

// LevelForXP inverts XPForLevel.
func LevelForXP(xp int) int {
	level := 1
	for XPForLevel(level+1) <= xp {
		level++
	}
	return level
}

// CombatDamage returns damage dealt to the defender for one exchange.
// roll is uniform in [0,1); the result is never negative.
func CombatDamage(attackerPower, defenderPower int, roll float64) int {
	if attackerPower <= 0 {
		return 0
	}
	base := float64(attackerPower) * (0.75 + roll*0.5)
	dmg := int(base) - defenderPower/2
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// CharacterPower derives a character's fighting strength from level and sustenance.
func CharacterPower(level int, penalty float64) int {
	p := int(float64(level*10) * penalty)
	if p < 1 {
		p = 1
	}
	return p
}

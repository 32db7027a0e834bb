package economy

// DecayToward moves v one step of size step toward zero without crossing it.
func DecayToward(v, step int) int {
	if step <= 0 {
		return v
	}
	switch {
	case v > 0:
		if v <= step {
			return 0
		}
		return v - step
	case v < 0:
		if -v <= step {
			return 0
		}
		return v + step
	}
	return 0
}

// DailyInterest is balance*pct/100 rounded up, so a positive balance at a
// positive rate always grows.
func DailyInterest(balance int64, pct int) int64 {
	if balance <= 0 || pct <= 0 {
		return 0
	}
	return (balance*int64(pct) + 99) / 100
}

// Regenerate refills remaining by perDay up to max.
func Regenerate(remaining, max, perDay int) int {
	if perDay <= 0 || remaining >= max {
		return remaining
	}
	remaining += perDay
	if remaining > max {
		remaining = max
	}
	return remaining
}

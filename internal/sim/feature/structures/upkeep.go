package structures

// NextDue schedules the following upkeep charge one day after due, or one day
// from now when nothing was scheduled yet.
func NextDue(now, due int64, day int64) int64 {
	if due == 0 {
		return now + day
	}
	return due + day
}

// NextDelinquency resets on payment and otherwise counts missed days.
func NextDelinquency(current int, paid bool) int {
	if paid {
		return 0
	}
	return current + 1
}

type UpkeepStatus string

const (
	UpkeepPaid    UpkeepStatus = "PAID"
	UpkeepLate    UpkeepStatus = "LATE"
	UpkeepWarning UpkeepStatus = "WARNING"
	UpkeepSeized  UpkeepStatus = "SEIZED"
)

// Classify reads the building's policy; a zero threshold disables that stage.
func Classify(delinquentDays, warnAfter, seizeAfter int) UpkeepStatus {
	switch {
	case delinquentDays == 0:
		return UpkeepPaid
	case seizeAfter > 0 && delinquentDays >= seizeAfter:
		return UpkeepSeized
	case warnAfter > 0 && delinquentDays >= warnAfter:
		return UpkeepWarning
	default:
		return UpkeepLate
	}
}

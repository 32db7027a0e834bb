package governance

// Tally counts votes per candidate. Votes for unknown candidates are ignored.
// The winner has the most votes; ties go to the earliest nominated candidate.
// No candidates, or no valid votes at all, means no winner.
func Tally(candidates []string, votes map[string]string) (string, map[string]int) {
	counts := make(map[string]int, len(candidates))
	for _, c := range candidates {
		counts[c] = 0
	}
	for _, c := range votes {
		if _, ok := counts[c]; ok {
			counts[c]++
		}
	}
	winner, best := "", 0
	for _, c := range candidates {
		if counts[c] > best {
			winner, best = c, counts[c]
		}
	}
	return winner, counts
}

// ImpeachmentPasses reports whether the for-share strictly exceeds threshold.
func ImpeachmentPasses(votesFor, votesAgainst int, threshold float64) bool {
	total := votesFor + votesAgainst
	if total <= 0 {
		return false
	}
	return float64(votesFor)/float64(total) > threshold
}

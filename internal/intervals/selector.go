package intervals

import "github.com/producerfilm/backend/internal/contracts"

// SelectExtremes partitions intervals into those equal to the global minimum
// and those equal to the global maximum. Input order is preserved, and when
// min equals max every interval lands in both lists.
func SelectExtremes(all []contracts.ProducerInterval) *contracts.WinnerIntervalResult {
	if len(all) == 0 {
		return contracts.EmptyWinnerIntervalResult()
	}

	minValue, maxValue := all[0].Interval, all[0].Interval
	for _, iv := range all[1:] {
		if iv.Interval < minValue {
			minValue = iv.Interval
		}
		if iv.Interval > maxValue {
			maxValue = iv.Interval
		}
	}

	minSet := make([]contracts.ProducerInterval, 0)
	maxSet := make([]contracts.ProducerInterval, 0)
	for _, iv := range all {
		if iv.Interval == minValue {
			minSet = append(minSet, iv)
		}
		if iv.Interval == maxValue {
			maxSet = append(maxSet, iv)
		}
	}

	return &contracts.WinnerIntervalResult{Min: minSet, Max: maxSet}
}

package contracts

import "strings"

// ProducerInterval is the gap between two consecutive wins of one producer
// ⭐ SSOT: 수상 간격 값 객체는 여기서만 생성
type ProducerInterval struct {
	Producer     string `json:"producer" yaml:"producer"`
	Interval     int    `json:"interval" yaml:"interval"`
	PreviousWin  int    `json:"previousWin" yaml:"previousWin"`
	FollowingWin int    `json:"followingWin" yaml:"followingWin"`
}

// NewProducerInterval checks the value invariants. A failure here means the
// caller computed something impossible and is reported as ErrInvariant.
func NewProducerInterval(producer string, interval, previousWin, followingWin int) (ProducerInterval, error) {
	if strings.TrimSpace(producer) == "" {
		return ProducerInterval{}, invariantf("producer must not be empty")
	}
	if interval < 0 {
		return ProducerInterval{}, invariantf("interval %d is negative", interval)
	}
	if previousWin >= followingWin {
		return ProducerInterval{}, invariantf("previous win %d must precede following win %d", previousWin, followingWin)
	}
	if interval != followingWin-previousWin {
		return ProducerInterval{}, invariantf("interval %d does not match %d-%d", interval, followingWin, previousWin)
	}

	return ProducerInterval{
		Producer:     producer,
		Interval:     interval,
		PreviousWin:  previousWin,
		FollowingWin: followingWin,
	}, nil
}

// WinnerIntervalResult holds every interval tied at the global minimum and
// maximum. Both slices are always non-nil.
type WinnerIntervalResult struct {
	Min []ProducerInterval `json:"min" yaml:"min"`
	Max []ProducerInterval `json:"max" yaml:"max"`
}

// NewWinnerIntervalResult copies min and max, replacing nil with empty slices
func NewWinnerIntervalResult(min, max []ProducerInterval) *WinnerIntervalResult {
	r := &WinnerIntervalResult{
		Min: make([]ProducerInterval, len(min)),
		Max: make([]ProducerInterval, len(max)),
	}
	copy(r.Min, min)
	copy(r.Max, max)
	return r
}

// EmptyWinnerIntervalResult is the answer when no interval exists
func EmptyWinnerIntervalResult() *WinnerIntervalResult {
	return NewWinnerIntervalResult(nil, nil)
}

// IsEmpty reports whether no producer has two or more wins
func (r *WinnerIntervalResult) IsEmpty() bool {
	return len(r.Min) == 0 && len(r.Max) == 0
}

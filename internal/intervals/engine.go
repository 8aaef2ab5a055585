// Package intervals computes the gaps between consecutive wins of each
// producer and selects the global minimum and maximum gaps.
//
// The computation is a pure function of its input: every call owns its
// working state, so an Engine may be shared between goroutines.
package intervals

import (
	"fmt"
	"sort"

	"github.com/producerfilm/backend/internal/contracts"
)

// Engine implements contracts.IntervalCalculator
type Engine struct{}

// NewEngine creates a new interval engine
func NewEngine() *Engine {
	return &Engine{}
}

// Calculate returns the extreme interval sets for the given records.
// Non-winning records are ignored.
func (e *Engine) Calculate(records []*contracts.Movie) (*contracts.WinnerIntervalResult, error) {
	return ComputeIntervals(records)
}

// ComputeIntervals groups winning records by producer and reduces the
// resulting intervals to the min/max sets.
func ComputeIntervals(records []*contracts.Movie) (*contracts.WinnerIntervalResult, error) {
	wins := groupWins(records)
	if wins.len() == 0 {
		return contracts.EmptyWinnerIntervalResult(), nil
	}

	all, err := wins.intervals()
	if err != nil {
		return nil, err
	}

	return SelectExtremes(all), nil
}

// producerWins maps producer -> distinct winning years, iterated in the
// order producers were first seen.
type producerWins struct {
	order []string
	years map[string][]int
}

func newProducerWins() *producerWins {
	return &producerWins{years: make(map[string][]int)}
}

func (p *producerWins) len() int {
	return len(p.order)
}

// add records a win unless that producer already has the year
func (p *producerWins) add(producer string, year int) {
	years, ok := p.years[producer]
	if !ok {
		p.order = append(p.order, producer)
	}
	for _, y := range years {
		if y == year {
			return
		}
	}
	p.years[producer] = append(years, year)
}

func groupWins(records []*contracts.Movie) *producerWins {
	wins := newProducerWins()
	for _, m := range records {
		if m == nil || !m.IsWinner() {
			continue
		}
		for _, producer := range m.ProducerNames() {
			wins.add(producer, m.Year())
		}
	}
	return wins
}

// intervals emits one interval per adjacent pair of sorted years, producer
// by producer in first-seen order.
func (p *producerWins) intervals() ([]contracts.ProducerInterval, error) {
	var out []contracts.ProducerInterval

	for _, producer := range p.order {
		years := p.years[producer]
		if len(years) < 2 {
			continue
		}

		sorted := make([]int, len(years))
		copy(sorted, years)
		sort.Ints(sorted)

		for i := 0; i < len(sorted)-1; i++ {
			iv, err := contracts.NewProducerInterval(producer, sorted[i+1]-sorted[i], sorted[i], sorted[i+1])
			if err != nil {
				return nil, fmt.Errorf("build interval for %q: %w", producer, err)
			}
			out = append(out, iv)
		}
	}

	return out, nil
}

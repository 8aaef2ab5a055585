package contracts

import (
	"strings"
	"time"
)

const (
	// MinYear is the earliest accepted award year
	MinYear = 1900

	// yearsAhead bounds how far past the current year a record may be dated
	yearsAhead = 10

	winnerToken = "yes"
)

// Movie is one entry of the award history (a nominated work for a year)
// ⭐ SSOT: 수상 이력 엔티티는 이 구조체에서만
//
// Fields are unexported so a Movie can only change through Update.
type Movie struct {
	id        int64
	year      int
	title     string
	studios   string
	producers string
	winner    string
	createdAt time.Time
}

// MovieInput carries the caller supplied values for a new movie
type MovieInput struct {
	Year      int
	Title     string
	Studios   string
	Producers string
	Winner    string
}

// MaxYear returns the latest accepted award year (current year + 10)
func MaxYear() int {
	return time.Now().UTC().Year() + yearsAhead
}

// NewMovie validates the input and builds a Movie
func NewMovie(in MovieInput) (*Movie, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}

	if in.Year < MinYear || in.Year > MaxYear() {
		return nil, &ValidationError{Field: "year", Message: "invalid year"}
	}

	return &Movie{
		year:      in.Year,
		title:     in.Title,
		studios:   in.Studios,
		producers: in.Producers,
		winner:    in.Winner,
		createdAt: time.Now().UTC(),
	}, nil
}

// RestoreMovie rebuilds a persisted movie without re-running validation.
// Only the repository layer should call it.
func RestoreMovie(id int64, year int, title, studios, producers, winner string, createdAt time.Time) *Movie {
	return &Movie{
		id:        id,
		year:      year,
		title:     title,
		studios:   studios,
		producers: producers,
		winner:    winner,
		createdAt: createdAt,
	}
}

// Update replaces title, studios, producers and winner together.
// Year is immutable and is not re-validated.
func (m *Movie) Update(title, studios, producers, winner string) error {
	if err := validateTitle(title); err != nil {
		return err
	}

	m.title = title
	m.studios = studios
	m.producers = producers
	m.winner = winner
	return nil
}

// IsWinner reports whether the winner flag is "yes" (case-insensitive)
func (m *Movie) IsWinner() bool {
	return strings.EqualFold(m.winner, winnerToken)
}

// ProducerNames returns the normalized producers credited on this record
func (m *Movie) ProducerNames() []string {
	return ParseProducers(m.producers)
}

func (m *Movie) ID() int64            { return m.id }
func (m *Movie) Year() int            { return m.year }
func (m *Movie) Title() string        { return m.title }
func (m *Movie) Studios() string      { return m.studios }
func (m *Movie) Producers() string    { return m.producers }
func (m *Movie) Winner() string       { return m.winner }
func (m *Movie) CreatedAt() time.Time { return m.createdAt }

// WithID returns a copy carrying the id assigned by storage
func (m *Movie) WithID(id int64, createdAt time.Time) *Movie {
	c := *m
	c.id = id
	c.createdAt = createdAt
	return &c
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "title cannot be empty"}
	}
	return nil
}

// MovieStatistics summarizes the stored award history
type MovieStatistics struct {
	TotalMovies  int `json:"totalMovies"`
	TotalWinners int `json:"totalWinners"`
	YearsCount   int `json:"yearsCount"`
	MinYear      int `json:"minYear"`
	MaxYear      int `json:"maxYear"`
}

package movies

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/producerfilm/backend/internal/contracts"
)

// MemoryRepository keeps the award history in process. It backs offline CLI
// runs (intervals --file) and tests, and orders results like Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	movies map[int64]*contracts.Movie
	nextID int64
}

var _ contracts.MovieRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		movies: make(map[int64]*contracts.Movie),
		nextID: 1,
	}
}

func (r *MemoryRepository) GetAll(ctx context.Context) ([]*contracts.Movie, error) {
	all := r.filter(func(*contracts.Movie) bool { return true })
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Year() != all[j].Year() {
			return all[i].Year() > all[j].Year()
		}
		return all[i].Title() < all[j].Title()
	})
	return all, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*contracts.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.movies[id]
	if !ok {
		return nil, fmt.Errorf("movie %d: %w", id, contracts.ErrNotFound)
	}
	return copyMovie(m), nil
}

func (r *MemoryRepository) GetByYear(ctx context.Context, year int) ([]*contracts.Movie, error) {
	matched := r.filter(func(m *contracts.Movie) bool { return m.Year() == year })
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Title() < matched[j].Title() })
	return matched, nil
}

func (r *MemoryRepository) GetWinners(ctx context.Context) ([]*contracts.Movie, error) {
	winners := r.filter((*contracts.Movie).IsWinner)
	sort.SliceStable(winners, func(i, j int) bool {
		if winners[i].Year() != winners[j].Year() {
			return winners[i].Year() < winners[j].Year()
		}
		return winners[i].ID() < winners[j].ID()
	})
	return winners, nil
}

func (r *MemoryRepository) Add(ctx context.Context, movie *contracts.Movie) (*contracts.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert(movie), nil
}

func (r *MemoryRepository) AddBatch(ctx context.Context, movies []*contracts.Movie) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range movies {
		r.insert(m)
	}
	return len(movies), nil
}

func (r *MemoryRepository) Update(ctx context.Context, movie *contracts.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.movies[movie.ID()]; !ok {
		return fmt.Errorf("movie %d: %w", movie.ID(), contracts.ErrNotFound)
	}
	r.movies[movie.ID()] = copyMovie(movie)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.movies[id]; !ok {
		return fmt.Errorf("movie %d: %w", id, contracts.ErrNotFound)
	}
	delete(r.movies, id)
	return nil
}

func (r *MemoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.movies[id]
	return ok, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.movies), nil
}

// insert must be called with the write lock held
func (r *MemoryRepository) insert(movie *contracts.Movie) *contracts.Movie {
	stored := movie.WithID(r.nextID, time.Now().UTC())
	r.movies[stored.ID()] = stored
	r.nextID++
	return copyMovie(stored)
}

func (r *MemoryRepository) filter(keep func(*contracts.Movie) bool) []*contracts.Movie {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*contracts.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		if keep(m) {
			out = append(out, copyMovie(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func copyMovie(m *contracts.Movie) *contracts.Movie {
	return m.WithID(m.ID(), m.CreatedAt())
}

package movies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/producerfilm/backend/internal/contracts"
)

// Repository persists the award history in movie_list_histories
// ⭐ SSOT: 수상 이력 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

var _ contracts.MovieRepository = (*Repository)(nil)

// NewRepository creates a new movie repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `
	SELECT id, year, title,
	       COALESCE(studios, ''), COALESCE(producers, ''), COALESCE(winner, ''),
	       created_at
	FROM movie_list_histories
`

// GetAll returns every movie, newest year first then by title
func (r *Repository) GetAll(ctx context.Context) ([]*contracts.Movie, error) {
	return r.query(ctx, selectColumns+`ORDER BY year DESC, title ASC`)
}

// GetByID returns one movie or contracts.ErrNotFound
func (r *Repository) GetByID(ctx context.Context, id int64) (*contracts.Movie, error) {
	row := r.pool.QueryRow(ctx, selectColumns+`WHERE id = $1`, id)

	movie, err := scanMovie(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("movie %d: %w", id, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	return movie, nil
}

// GetByYear returns the movies of one award year ordered by title
func (r *Repository) GetByYear(ctx context.Context, year int) ([]*contracts.Movie, error) {
	return r.query(ctx, selectColumns+`WHERE year = $1 ORDER BY title ASC`, year)
}

// GetWinners returns every winning movie ordered by year
func (r *Repository) GetWinners(ctx context.Context) ([]*contracts.Movie, error) {
	return r.query(ctx, selectColumns+`WHERE LOWER(winner) = 'yes' ORDER BY year ASC, id ASC`)
}

// Add inserts a movie and returns it with the assigned id
func (r *Repository) Add(ctx context.Context, movie *contracts.Movie) (*contracts.Movie, error) {
	query := `
		INSERT INTO movie_list_histories (year, title, studios, producers, winner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	var id int64
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, query, insertArgs(movie)...).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert movie: %w", err)
	}

	return movie.WithID(id, createdAt), nil
}

// AddBatch inserts all movies in a single transaction
func (r *Repository) AddBatch(ctx context.Context, movies []*contracts.Movie) (int, error) {
	if len(movies) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO movie_list_histories (year, title, studios, producers, winner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, movie := range movies {
		batch.Queue(query, insertArgs(movie)...)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range movies {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return 0, fmt.Errorf("insert movie %d of batch: %w", i+1, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(movies), nil
}

// Update writes the mutable fields of an existing movie
func (r *Repository) Update(ctx context.Context, movie *contracts.Movie) error {
	query := `
		UPDATE movie_list_histories
		SET title = $1, studios = $2, producers = $3, winner = $4
		WHERE id = $5
	`

	tag, err := r.pool.Exec(ctx, query,
		movie.Title(), nullable(movie.Studios()), nullable(movie.Producers()), nullable(movie.Winner()),
		movie.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movie %d: %w", movie.ID(), contracts.ErrNotFound)
	}

	return nil
}

// Delete removes a movie or returns contracts.ErrNotFound
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movie_list_histories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movie %d: %w", id, contracts.ErrNotFound)
	}

	return nil
}

// Exists reports whether a movie with the id is stored
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM movie_list_histories WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check movie: %w", err)
	}

	return exists, nil
}

// Count returns the number of stored movies
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movie_list_histories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}

	return count, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]*contracts.Movie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	movies := make([]*contracts.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return movies, nil
}

func scanMovie(row pgx.Row) (*contracts.Movie, error) {
	var (
		id                        int64
		year                      int
		title, studios, producers string
		winner                    string
		createdAt                 time.Time
	)

	if err := row.Scan(&id, &year, &title, &studios, &producers, &winner, &createdAt); err != nil {
		return nil, err
	}

	return contracts.RestoreMovie(id, year, title, studios, producers, winner, createdAt), nil
}

func insertArgs(movie *contracts.Movie) []interface{} {
	return []interface{}{
		movie.Year(), movie.Title(),
		nullable(movie.Studios()), nullable(movie.Producers()), nullable(movie.Winner()),
		movie.CreatedAt(),
	}
}

// nullable stores empty optional columns as NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package contracts

import "context"

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// WinnerProvider supplies the records the interval computation runs on
type WinnerProvider interface {
	GetWinners(ctx context.Context) ([]*Movie, error)
}

// MovieRepository manages the stored award history
type MovieRepository interface {
	WinnerProvider

	GetAll(ctx context.Context) ([]*Movie, error)
	GetByID(ctx context.Context, id int64) (*Movie, error)
	GetByYear(ctx context.Context, year int) ([]*Movie, error)
	Add(ctx context.Context, movie *Movie) (*Movie, error)
	AddBatch(ctx context.Context, movies []*Movie) (int, error)
	Update(ctx context.Context, movie *Movie) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// IntervalCalculator reduces winner records to the extreme interval sets
type IntervalCalculator interface {
	Calculate(records []*Movie) (*WinnerIntervalResult, error)
}

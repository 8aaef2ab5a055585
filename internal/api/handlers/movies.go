package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/producerfilm/backend/internal/contracts"
	"github.com/producerfilm/backend/internal/movies"
	"github.com/producerfilm/backend/pkg/logger"
)

// MovieService is the part of movies.Service the movie endpoints use
type MovieService interface {
	ListMovies(ctx context.Context) ([]*contracts.Movie, error)
	GetMovie(ctx context.Context, id int64) (*contracts.Movie, error)
	ListByYear(ctx context.Context, year int) ([]*contracts.Movie, error)
	ListWinners(ctx context.Context) ([]*contracts.Movie, error)
	Statistics(ctx context.Context) (*contracts.MovieStatistics, error)
	CreateMovie(ctx context.Context, in contracts.MovieInput) (*contracts.Movie, error)
	UpdateMovie(ctx context.Context, id int64, in movies.UpdateInput) error
	DeleteMovie(ctx context.Context, id int64) error
}

// MovieHandler handles the award history endpoints
// ⭐ SSOT: 수상 이력 API 핸들러는 이 구조체에서만
type MovieHandler struct {
	service MovieService
	logger  *logger.Logger
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(service MovieService, log *logger.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		logger:  log,
	}
}

// MovieResponse is the JSON shape of a stored movie
type MovieResponse struct {
	ID        int64     `json:"id"`
	Year      int       `json:"year"`
	Title     string    `json:"title"`
	Studios   string    `json:"studios,omitempty"`
	Producers string    `json:"producers,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MovieRequest is the body of create and update requests.
// Year is ignored on update.
type MovieRequest struct {
	Year      int    `json:"year"`
	Title     string `json:"title"`
	Studios   string `json:"studios"`
	Producers string `json:"producers"`
	Winner    string `json:"winner"`
}

func toMovieResponse(m *contracts.Movie) MovieResponse {
	return MovieResponse{
		ID:        m.ID(),
		Year:      m.Year(),
		Title:     m.Title(),
		Studios:   m.Studios(),
		Producers: m.Producers(),
		Winner:    m.Winner(),
		CreatedAt: m.CreatedAt(),
	}
}

func toMovieResponses(list []*contracts.Movie) []MovieResponse {
	out := make([]MovieResponse, len(list))
	for i, m := range list {
		out[i] = toMovieResponse(m)
	}
	return out
}

// List returns all movies, or the movies of one year
// GET /api/movies?year=1980
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		list []*contracts.Movie
		err  error
	)

	if raw := r.URL.Query().Get("year"); raw != "" {
		year, convErr := strconv.Atoi(raw)
		if convErr != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'year' parameter")
			return
		}
		list, err = h.service.ListByYear(ctx, year)
	} else {
		list, err = h.service.ListMovies(ctx)
	}

	if err != nil {
		respondServiceError(w, h.logger, err, "listing movies")
		return
	}

	respondJSON(w, http.StatusOK, toMovieResponses(list))
}

// Winners returns the winning movies
// GET /api/movies/winners
func (h *MovieHandler) Winners(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListWinners(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "listing winners")
		return
	}

	respondJSON(w, http.StatusOK, toMovieResponses(list))
}

// Statistics returns the history summary
// GET /api/movies/statistics
func (h *MovieHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "computing statistics")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Get returns one movie
// GET /api/movies/{id}
func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	movie, err := h.service.GetMovie(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "loading movie")
		return
	}

	respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

// Create stores a new movie
// POST /api/movies
func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req MovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	movie, err := h.service.CreateMovie(r.Context(), contracts.MovieInput{
		Year:      req.Year,
		Title:     req.Title,
		Studios:   req.Studios,
		Producers: req.Producers,
		Winner:    req.Winner,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "creating movie")
		return
	}

	w.Header().Set("Location", "/api/movies/"+strconv.FormatInt(movie.ID(), 10))
	respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

// Update replaces the mutable fields of a movie
// PUT /api/movies/{id}
func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req MovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.service.UpdateMovie(r.Context(), id, movies.UpdateInput{
		Title:     req.Title,
		Studios:   req.Studios,
		Producers: req.Producers,
		Winner:    req.Winner,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "updating movie")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a movie
// DELETE /api/movies/{id}
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMovie(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "deleting movie")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid movie id")
		return 0, false
	}
	return id, true
}

// Package importer loads award history files (semicolon separated CSV or an
// HTML table) into the movie store. Invalid rows are skipped and reported;
// the rest of the batch still imports.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/producerfilm/backend/internal/contracts"
	"github.com/producerfilm/backend/pkg/httputil"
	"github.com/producerfilm/backend/pkg/logger"
	"github.com/producerfilm/backend/pkg/metrics"
)

// ErrInvalidSource marks input that cannot be read as an award table
// (missing header columns, malformed markup). Row level problems never use it.
var ErrInvalidSource = errors.New("invalid import source")

// Format identifies the layout of an import source
type Format string

const (
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatHTML, "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported import format %q", s)
	}
}

// FormatFromPath picks the format from a file name extension (CSV unless .html/.htm)
func FormatFromPath(p string) Format {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatCSV
	}
}

// RowError describes one skipped row
type RowError struct {
	Line  int
	Title string
	Err   error
}

func (e RowError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Title, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result summarizes one import run
type Result struct {
	Source   string     `json:"source"`
	Rows     int        `json:"rows"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"-"`
}

// Messages returns the row errors as strings (used for JSON responses)
func (r *Result) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}

// Batch is the outcome of parsing a source without storing it
type Batch struct {
	Movies []*contracts.Movie
	Rows   int
	Errors []RowError
}

// Store receives validated movies
type Store interface {
	ImportMovies(ctx context.Context, movies []*contracts.Movie) (int, error)
}

// Importer parses sources and hands the valid rows to the store
// ⭐ SSOT: 파일/URL 임포트는 여기서만
type Importer struct {
	store   Store
	client  *httputil.Client
	metrics *metrics.Manager
	logger  *logger.Logger
}

// New creates an importer. client is only needed by ImportURL and metrics may be nil.
func New(store Store, client *httputil.Client, m *metrics.Manager, log *logger.Logger) *Importer {
	return &Importer{
		store:   store,
		client:  client,
		metrics: m,
		logger:  log,
	}
}

// Parse reads every row of r and validates it
func Parse(r io.Reader, format Format) (*Batch, error) {
	var rows []rawRow
	var err error

	switch format {
	case FormatHTML:
		rows, err = readHTML(r)
	default:
		rows, err = readCSV(r)
	}
	if err != nil {
		return nil, err
	}

	batch := &Batch{
		Movies: make([]*contracts.Movie, 0, len(rows)),
		Rows:   len(rows),
	}
	for _, row := range rows {
		movie, err := row.movie()
		if err != nil {
			batch.Errors = append(batch.Errors, RowError{Line: row.line, Title: row.title, Err: err})
			continue
		}
		batch.Movies = append(batch.Movies, movie)
	}

	return batch, nil
}

// ImportReader parses r and stores the valid rows under the given source name
func (i *Importer) ImportReader(ctx context.Context, source string, r io.Reader, format Format) (*Result, error) {
	batch, err := Parse(r, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", source, ErrInvalidSource, err)
	}

	log := i.logger.WithField("source", source)
	for _, rowErr := range batch.Errors {
		log.WithFields(map[string]interface{}{
			"line":  rowErr.Line,
			"title": rowErr.Title,
			"error": rowErr.Err.Error(),
		}).Warn("Skipping invalid row")
	}

	imported, err := i.store.ImportMovies(ctx, batch.Movies)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", source, err)
	}

	result := &Result{
		Source:   source,
		Rows:     batch.Rows,
		Imported: imported,
		Skipped:  len(batch.Errors),
		Errors:   batch.Errors,
	}
	i.metrics.RecordImportRows(result.Imported, result.Skipped)

	log.WithFields(map[string]interface{}{
		"rows":     result.Rows,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("Import completed")

	return result, nil
}

// ImportFile imports one local file; the format follows its extension
func (i *Importer) ImportFile(ctx context.Context, filePath string) (*Result, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	return i.ImportReader(ctx, filePath, f, FormatFromPath(filePath))
}

// ImportURL downloads a remote file and imports it
func (i *Importer) ImportURL(ctx context.Context, rawURL string) (*Result, error) {
	if i.client == nil {
		return nil, fmt.Errorf("import url: no http client configured")
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("import url: invalid url %q", rawURL)
	}

	body, err := i.client.Download(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}

	return i.ImportReader(ctx, rawURL, bytes.NewReader(body), FormatFromPath(path.Base(u.Path)))
}

// rawRow holds the text of one data row before validation
type rawRow struct {
	line      int
	year      string
	title     string
	studios   string
	producers string
	winner    string
}

func (r rawRow) movie() (*contracts.Movie, error) {
	year, err := strconv.Atoi(r.year)
	if err != nil {
		return nil, &contracts.ValidationError{Field: "year", Message: fmt.Sprintf("%q is not a number", r.year)}
	}

	return contracts.NewMovie(contracts.MovieInput{
		Year:      year,
		Title:     r.title,
		Studios:   r.studios,
		Producers: r.producers,
		Winner:    r.winner,
	})
}

// columns maps the known header names to their position in a row
type columns map[string]int

var requiredColumns = []string{"year", "title"}

func newColumns(header []string) (columns, error) {
	cols := make(columns)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup && name != "" {
			cols[name] = i
		}
	}

	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("header is missing required column %q", name)
		}
	}
	return cols, nil
}

// row maps one record onto the known columns. The winner flag is kept
// verbatim: " yes" is not a winner.
func (c columns) row(line int, fields []string) rawRow {
	raw := func(name string) string {
		i, ok := c[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	get := func(name string) string {
		return strings.TrimSpace(raw(name))
	}

	return rawRow{
		line:      line,
		year:      get("year"),
		title:     get("title"),
		studios:   get("studios"),
		producers: get("producers"),
		winner:    raw("winner"),
	}
}

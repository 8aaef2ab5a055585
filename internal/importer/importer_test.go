package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/producerfilm/backend/internal/contracts"
	"github.com/producerfilm/backend/pkg/httputil"
	"github.com/producerfilm/backend/pkg/logger"
	"github.com/producerfilm/backend/pkg/metrics"
)

type recordingStore struct {
	movies []*contracts.Movie
	err    error
}

func (s *recordingStore) ImportMovies(ctx context.Context, movies []*contracts.Movie) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.movies = append(s.movies, movies...)
	return len(movies), nil
}

const sampleCSV = `year;title;studios;producers;winner
1980;Can't Stop the Music;Associated Film Distribution;Allan Carr;yes
1980;Cruising;Lorimar Productions, United Artists;Jerry Weintraub;
abc;Broken Year;Studio;Someone;yes
1981;Mommie Dearest;Paramount Pictures;Frank Yablans;yes
1982;;Studio;Nobody;yes
`

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"html", FormatHTML, false},
		{"htm", FormatHTML, false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFromPath("movielist.csv"))
	assert.Equal(t, FormatHTML, FormatFromPath("list.HTML"))
	assert.Equal(t, FormatHTML, FormatFromPath("dir/list.htm"))
	assert.Equal(t, FormatCSV, FormatFromPath("noext"))
}

func TestParse_CSV(t *testing.T) {
	batch, err := Parse(strings.NewReader(sampleCSV), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 5, batch.Rows)
	require.Len(t, batch.Movies, 3)
	assert.Equal(t, "Can't Stop the Music", batch.Movies[0].Title())
	assert.True(t, batch.Movies[0].IsWinner())
	assert.False(t, batch.Movies[1].IsWinner())
	assert.Equal(t, "Lorimar Productions, United Artists", batch.Movies[1].Studios())

	require.Len(t, batch.Errors, 2)
	assert.Equal(t, 4, batch.Errors[0].Line)
	assert.Equal(t, "Broken Year", batch.Errors[0].Title)
	assert.True(t, contracts.IsValidation(batch.Errors[0]))
	assert.Equal(t, 6, batch.Errors[1].Line)
	assert.True(t, contracts.IsValidation(batch.Errors[1].Err))
}

func TestParse_CSVHeaderVariants(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantRows  int
		wantWin   bool
		wantError bool
	}{
		{
			name:     "winner column optional",
			input:    "year;title;studios;producers\n1990;Ghosts Can't Do It;Triumph;Bo Derek\n",
			wantRows: 1,
		},
		{
			name:     "columns reordered and upper case",
			input:    "Title;YEAR;Winner;Producers\nX;1990;YES;Bo Derek\n",
			wantRows: 1,
			wantWin:  true,
		},
		{
			name:     "byte order mark and extra columns",
			input:    "\ufeffyear;title;studios;producers;winner;notes\n1990;X;S;P;yes;ignored\n",
			wantRows: 1,
			wantWin:  true,
		},
		{
			name:     "padded winner flag is not a winner",
			input:    "year;title;studios;producers;winner\n1990;X;S;P; yes\n",
			wantRows: 1,
			wantWin:  false,
		},
		{
			name:     "short row tolerated",
			input:    "year;title;studios;producers;winner\n1990;X\n",
			wantRows: 1,
		},
		{
			name:      "missing title column",
			input:     "year;studios\n1990;S\n",
			wantError: true,
		},
		{
			name:      "empty input",
			input:     "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := Parse(strings.NewReader(tt.input), FormatCSV)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, batch.Movies, tt.wantRows)
			assert.Equal(t, tt.wantWin, batch.Movies[0].IsWinner())
		})
	}
}

func TestParse_HTML(t *testing.T) {
	page := `<html><body>
<table><tr><td>navigation</td></tr></table>
<table>
  <thead><tr><th>Year</th><th>Title</th><th>Studios</th><th>Producers</th><th>Winner</th></tr></thead>
  <tbody>
    <tr><td>1980</td><td>Can't Stop the Music</td><td>AFD</td><td>Allan Carr</td><td>yes</td></tr>
    <tr><td>19x0</td><td>Bad</td><td></td><td></td><td></td></tr>
    <tr><td>1981</td><td> Mommie Dearest </td><td>Paramount</td><td>Frank Yablans</td><td>yes</td></tr>
  </tbody>
</table>
</body></html>`

	batch, err := Parse(strings.NewReader(page), FormatHTML)
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Rows)
	require.Len(t, batch.Movies, 2)
	assert.Equal(t, "Mommie Dearest", batch.Movies[1].Title())
	assert.Equal(t, "Frank Yablans", batch.Movies[1].Producers())
	require.Len(t, batch.Errors, 1)
	assert.Equal(t, 3, batch.Errors[0].Line)
}

func TestParse_HTMLWithoutTable(t *testing.T) {
	_, err := Parse(strings.NewReader("<p>nothing here</p>"), FormatHTML)
	assert.Error(t, err)
}

func TestImportReader(t *testing.T) {
	store := &recordingStore{}
	m := metrics.NewManager()
	imp := New(store, nil, m, logger.NewNop())

	result, err := imp.ImportReader(context.Background(), "upload", strings.NewReader(sampleCSV), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "upload", result.Source)
	assert.Equal(t, 5, result.Rows)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.Messages(), 2)
	assert.Len(t, store.movies, 3)
}

func TestImportReader_StoreFailure(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	imp := New(store, nil, nil, logger.NewNop())

	_, err := imp.ImportReader(context.Background(), "upload", strings.NewReader(sampleCSV), FormatCSV)
	assert.Error(t, err)
}

func TestImportURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/movielist.csv" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	client := httputil.New(logger.NewNop()).WithRetry(1, 10*time.Millisecond)
	store := &recordingStore{}
	imp := New(store, client, nil, logger.NewNop())

	result, err := imp.ImportURL(context.Background(), server.URL+"/data/movielist.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)

	_, err = imp.ImportURL(context.Background(), server.URL+"/missing.csv")
	assert.Error(t, err)

	_, err = imp.ImportURL(context.Background(), "ftp://example.com/list.csv")
	assert.Error(t, err)
}

func TestImportURL_NoClient(t *testing.T) {
	imp := New(&recordingStore{}, nil, nil, logger.NewNop())

	_, err := imp.ImportURL(context.Background(), "http://example.com/list.csv")
	assert.Error(t, err)
}

func TestImportReader_InvalidSource(t *testing.T) {
	imp := New(&recordingStore{}, nil, nil, logger.NewNop())

	_, err := imp.ImportReader(context.Background(), "upload", strings.NewReader("foo;bar\n1;2\n"), FormatCSV)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

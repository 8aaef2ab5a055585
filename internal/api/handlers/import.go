package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/producerfilm/backend/internal/importer"
	"github.com/producerfilm/backend/pkg/logger"
)

// maxUploadSize caps import request bodies
const maxUploadSize = 32 << 20

// ReaderImporter stores the rows of an uploaded file
type ReaderImporter interface {
	ImportReader(ctx context.Context, source string, r io.Reader, format importer.Format) (*importer.Result, error)
}

// ImportHandler accepts award files over HTTP
type ImportHandler struct {
	importer ReaderImporter
	logger   *logger.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(imp ReaderImporter, log *logger.Logger) *ImportHandler {
	return &ImportHandler{
		importer: imp,
		logger:   log,
	}
}

// ImportResponse reports the outcome of an upload
type ImportResponse struct {
	Source   string   `json:"source"`
	Rows     int      `json:"rows"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Import reads a multipart "file" field or the raw request body.
// ?format=csv|html overrides the format guessed from the file name.
// POST /api/movies/import
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var (
		body   io.Reader = r.Body
		source           = "upload"
		format           = importer.FormatCSV
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(w, http.StatusRequestEntityTooLarge, "Upload too large")
				return
			}
			respondError(w, http.StatusBadRequest, "Missing 'file' form field")
			return
		}
		defer file.Close()

		body = file
		source = header.Filename
		format = importer.FormatFromPath(header.Filename)
	}

	if raw := r.URL.Query().Get("format"); raw != "" {
		parsed, err := importer.ParseFormat(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = parsed
	}

	result, err := h.importer.ImportReader(r.Context(), source, body, format)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondError(w, http.StatusRequestEntityTooLarge, "Upload too large")
		case errors.Is(err, importer.ErrInvalidSource):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondServiceError(w, h.logger, err, "importing movies")
		}
		return
	}

	respondJSON(w, http.StatusOK, ImportResponse{
		Source:   result.Source,
		Rows:     result.Rows,
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Errors:   result.Messages(),
	})
}

package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/producerfilm/backend/pkg/config"
	"github.com/producerfilm/backend/pkg/logger"
)

// processedSuffixLayout is appended to a moved file whose name is already taken
const processedSuffixLayout = "20060102150405"

// FolderProcessor imports every matching file of the inbox folder and moves
// it to the processed folder afterwards. Process runs are serialized.
type FolderProcessor struct {
	mu sync.Mutex

	importer     *Importer
	dir          string
	processedDir string
	pattern      string
	logger       *logger.Logger
	now          func() time.Time
}

// NewFolderProcessor creates a processor for the configured import folders
func NewFolderProcessor(imp *Importer, cfg config.ImportConfig, log *logger.Logger) *FolderProcessor {
	return &FolderProcessor{
		importer:     imp,
		dir:          cfg.Dir,
		processedDir: cfg.ProcessedDir,
		pattern:      cfg.Pattern,
		logger:       log.WithField("import_dir", cfg.Dir),
		now:          time.Now,
	}
}

// Process imports the pending files in name order. A file that cannot be
// parsed is moved out of the inbox without importing anything; a file that
// fails for any other reason is left in place for the next run.
func (p *FolderProcessor) Process(ctx context.Context) ([]*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create import dir: %w", err)
	}

	matches, err := doublestar.Glob(os.DirFS(p.dir), p.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("match import files: %w", err)
	}
	sort.Strings(matches)

	results := make([]*Result, 0, len(matches))
	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		src := filepath.Join(p.dir, filepath.FromSlash(rel))
		log := p.logger.WithField("file", rel)

		result, err := p.importer.ImportFile(ctx, src)
		switch {
		case errors.Is(err, ErrInvalidSource):
			log.WithError(err).Warn("Unreadable file, moving it without import")
		case err != nil:
			log.WithError(err).Error("Failed to import file, leaving it in place")
			continue
		default:
			results = append(results, result)
		}

		dest, err := p.moveProcessed(src)
		if err != nil {
			log.WithError(err).Error("Imported file could not be moved to processed folder")
			continue
		}
		log.WithField("moved_to", dest).Info("File processed")
	}

	return results, nil
}

// moveProcessed moves src into the processed folder and returns the new path
func (p *FolderProcessor) moveProcessed(src string) (string, error) {
	if err := os.MkdirAll(p.processedDir, 0o755); err != nil {
		return "", fmt.Errorf("create processed dir: %w", err)
	}

	dest := filepath.Join(p.processedDir, filepath.Base(src))
	if _, err := os.Stat(dest); err == nil {
		dest = timestamped(dest, p.now())
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.Rename(src, dest); err != nil {
		// Rename fails across filesystems; fall back to copy and remove
		if err := copyFile(src, dest); err != nil {
			return "", err
		}
		if err := os.Remove(src); err != nil {
			return "", err
		}
	}

	return dest, nil
}

// timestamped turns dir/name.ext into dir/name_yyyyMMddHHmmss.ext
func timestamped(p string, t time.Time) string {
	ext := filepath.Ext(p)
	base := strings.TrimSuffix(p, ext)
	return base + "_" + t.Format(processedSuffixLayout) + ext
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

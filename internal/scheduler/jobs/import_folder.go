package jobs

import (
	"context"

	"github.com/producerfilm/backend/internal/importer"
	"github.com/producerfilm/backend/pkg/logger"
)

// FolderImporter processes the pending files of the import folder
type FolderImporter interface {
	Process(ctx context.Context) ([]*importer.Result, error)
}

// ImportFolderJob imports new files dropped into the import folder
type ImportFolderJob struct {
	processor FolderImporter
	schedule  string
	logger    *logger.Logger
}

// NewImportFolderJob creates a new folder import job running on the given cron schedule
func NewImportFolderJob(processor FolderImporter, schedule string, log *logger.Logger) *ImportFolderJob {
	if schedule == "" {
		schedule = "0 * * * * *"
	}

	return &ImportFolderJob{
		processor: processor,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *ImportFolderJob) Name() string {
	return "import_folder"
}

// Schedule returns the cron schedule (IMPORT_SCHEDULE, every minute by default)
func (j *ImportFolderJob) Schedule() string {
	return j.schedule
}

// Run executes the folder import
func (j *ImportFolderJob) Run(ctx context.Context) error {
	results, err := j.processor.Process(ctx)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		j.logger.Debug("No files to import")
		return nil
	}

	imported, skipped := 0, 0
	for _, r := range results {
		imported += r.Imported
		skipped += r.Skipped
	}

	j.logger.WithFields(map[string]interface{}{
		"files":    len(results),
		"imported": imported,
		"skipped":  skipped,
	}).Info("Folder import completed")

	return nil
}

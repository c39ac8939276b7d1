// Package downloader performs the depth-ordered download pass over the
// files discovered by a scan. Fetches are strictly sequential; the client's
// pacer spaces them one second apart.
package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"wcmirror/pkg/commons"
	"wcmirror/pkg/logger"
	"wcmirror/pkg/scanner"
	"wcmirror/pkg/storage"
	"wcmirror/pkg/ui"
)

// FileFetcher fetches the binary content of a file by name. Satisfied by
// *commons.Client.
type FileFetcher interface {
	DownloadFile(ctx context.Context, fileName string) ([]byte, error)
}

// Downloader writes scanned files to local storage
type Downloader struct {
	client  FileFetcher
	storage *storage.Manager
	logger  logger.Logger

	// Quiet suppresses per-file terminal output
	Quiet bool
}

// New creates a Downloader over the given fetcher and storage manager
func New(client FileFetcher, store *storage.Manager, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		client:  client,
		storage: store,
		logger:  log,
	}
}

// Run downloads every bucketed file from depth 0 through maxDepth inclusive,
// in bucket order. Files whose sanitized name already exists on disk are
// skipped and count as neither success nor failure. Individual fetch
// failures are recorded and the pass continues; the only hard stop is
// context cancellation.
func (d *Downloader) Run(ctx context.Context, result *scanner.Result, maxDepth int) (int, int, error) {
	downloaded := 0
	errorCount := 0

	for depth := 0; depth <= maxDepth; depth++ {
		files := result.FilesByDepth[depth]
		if len(files) == 0 {
			continue
		}

		if !d.Quiet {
			fmt.Printf("\nDownloading depth %d (%d files)\n", depth, len(files))
		}
		d.logger.InfoWithFields("downloading depth", map[string]interface{}{
			"depth": depth,
			"files": len(files),
		})

		for _, entry := range files {
			fileName := commons.StripFilePrefix(entry.Title)
			safeName := storage.SanitizeFilename(fileName)

			if d.storage.Exists(safeName) {
				if !d.Quiet {
					fmt.Printf("Skipping (exists): %s\n", safeName)
				}
				d.logger.DebugWithFields("skipping existing file", map[string]interface{}{
					"file":     safeName,
					"category": entry.Category,
				})
				continue
			}

			if !d.Quiet {
				fmt.Printf("Downloading: %s\n", safeName)
			}

			data, err := d.client.DownloadFile(ctx, fileName)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return downloaded, errorCount, err
				}
				errorCount++
				d.logger.WithError(err).WithField("file", fileName).Error("download failed")
				if !d.Quiet {
					ui.PrintError("  Error", err)
				}
				continue
			}

			if err := d.storage.Save(bytes.NewReader(data), safeName); err != nil {
				errorCount++
				d.logger.WithError(err).WithField("file", safeName).Error("failed to save file")
				continue
			}

			downloaded++
			if !d.Quiet {
				fmt.Printf("  Saved (%d)\n", downloaded)
			}
		}
	}

	return downloaded, errorCount, nil
}

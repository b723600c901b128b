// Package dataset turns uploaded files into in-memory tables.
//
// A Processor owns the registered decoders (CSV here, XLSX from adapters/excel),
// enforces the upload limits and fingerprints the bytes. It keeps nothing:
// the caller decides whether the new Table replaces the session's current one.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/internal"
	"csvdash/internal/errors"
	"csvdash/ports"
)

// StorageConfig holds the limits applied to uploads
type StorageConfig struct {
	MaxFileSize int64 // Maximum file size in bytes
}

// DefaultStorageConfig returns sensible defaults
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		MaxFileSize: 50 * 1024 * 1024, // 50MB
	}
}

// Processor handles uploaded file parsing
type Processor struct {
	decoders map[string]ports.TableDecoder
	config   *StorageConfig
	logger   *internal.Logger
	now      func() time.Time
}

// NewProcessor creates a processor with the given decoders registered by extension
func NewProcessor(config *StorageConfig, logger *internal.Logger, decoders ...ports.TableDecoder) *Processor {
	if config == nil {
		config = DefaultStorageConfig()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	p := &Processor{
		decoders: make(map[string]ports.TableDecoder),
		config:   config,
		logger:   logger.With("DatasetProcessor"),
		now:      time.Now,
	}
	for _, d := range decoders {
		for _, ext := range d.Extensions() {
			p.decoders[strings.ToLower(ext)] = d
		}
	}
	return p
}

// AcceptedExtensions lists the extensions with a registered decoder, sorted
func (p *Processor) AcceptedExtensions() []string {
	exts := make([]string, 0, len(p.decoders))
	for ext := range p.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ProcessUpload parses an uploaded file into a Table.
//
// Every failure is returned as a DataParseError AppError whose chain matches
// core.ErrDataParse.
func (p *Processor) ProcessUpload(ctx context.Context, upload *dataset.Upload) (*dataset.Table, error) {
	if upload == nil || upload.File == nil {
		return nil, errors.DataParseError(core.NewParseError("no file uploaded"))
	}
	p.logger.Info("Starting processing for file: %s", upload.Filename)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoder, ok := p.decoders[upload.Extension()]
	if !ok {
		return nil, errors.DataParseError(core.NewParseError("unsupported file type %q, expected one of %s",
			upload.Extension(), strings.Join(p.AcceptedExtensions(), ", ")))
	}

	if upload.Size > p.config.MaxFileSize {
		return nil, errors.DataParseError(core.NewParseError("file size (%.1f MB) exceeds the %s limit",
			float64(upload.Size)/(1024*1024), formatBytes(p.config.MaxFileSize)))
	}

	data, err := io.ReadAll(io.LimitReader(upload.File, p.config.MaxFileSize+1))
	if err != nil {
		return nil, errors.DataParseError(core.NewParseError("failed to read upload: %v", err))
	}
	if int64(len(data)) > p.config.MaxFileSize {
		return nil, errors.DataParseError(core.NewParseError("file exceeds the %s limit", formatBytes(p.config.MaxFileSize)))
	}

	start := p.now()
	table, err := decoder.Decode(upload.Filename, bytes.NewReader(data))
	if err != nil {
		p.logger.Warn("Parse failed for %s: %v", upload.Filename, err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.DataParseError(err)
	}

	table.Fingerprint = core.NewHash(data)
	table.LoadedAt = p.now()

	rows, cols := table.Shape()
	p.logger.Info("Parsed %s (%s) with %d columns and %d rows in %s",
		upload.Filename, table.Fingerprint.Short(), cols, rows, p.now().Sub(start))
	return table, nil
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrExportDisabled is returned by Export when no snapshot path was configured.
var ErrExportDisabled = errors.New("export is not configured")

// ManagerOptions controls how a Manager stocks its catalog.
type ManagerOptions struct {
	NoSamples  bool
	SeedPath   string
	ExportPath string
	Logger     *slog.Logger
	Clock      func() time.Time
}

// LibraryManager is a thin façade over the Library and its snapshot export,
// keeping CLI code simple.
type LibraryManager struct {
	*Library

	exportPath string
	log        *slog.Logger
}

// NewLibraryManager builds a catalog stocked with the sample shelf (unless
// disabled) followed by any books from the seed file.
func NewLibraryManager(opts ManagerOptions) (*LibraryManager, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	libOpts := []Option{WithLogger(log)}
	if opts.Clock != nil {
		libOpts = append(libOpts, WithClock(opts.Clock))
	}
	lm := &LibraryManager{
		Library:    New(libOpts...),
		exportPath: strings.TrimSpace(opts.ExportPath),
		log:        log,
	}

	if !opts.NoSamples {
		if _, err := lm.AddAll(SampleBooks()); err != nil {
			return nil, fmt.Errorf("stock samples: %w", err)
		}
	}
	if opts.SeedPath != "" {
		seeds, err := LoadSeedFile(opts.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("load seed %s: %w", opts.SeedPath, err)
		}
		added, err := lm.AddAll(seeds)
		if err != nil {
			return nil, fmt.Errorf("load seed %s: %w", opts.SeedPath, err)
		}
		log.Info("seed loaded", "path", opts.SeedPath, "books", len(added))
	}
	return lm, nil
}

// CanExport reports whether a snapshot path is configured.
func (lm *LibraryManager) CanExport() bool { return lm.exportPath != "" }

// ExportPath is the configured snapshot file, or "".
func (lm *LibraryManager) ExportPath() string { return lm.exportPath }

// Export writes the current catalog to the configured snapshot file.
func (lm *LibraryManager) Export(ctx context.Context) (int, error) {
	if !lm.CanExport() {
		return 0, ErrExportDisabled
	}
	return ExportTo(ctx, lm.Library, lm.exportPath)
}

// ExportTo writes lib to a snapshot at path, creating it if needed.
func ExportTo(ctx context.Context, lib *Library, path string) (int, error) {
	snap, err := OpenSnapshot(path)
	if err != nil {
		return 0, err
	}
	defer snap.Close()

	n, err := snap.Write(ctx, lib)
	if err != nil {
		return 0, fmt.Errorf("export %s: %w", path, err)
	}
	lib.log.Info("catalog exported", "path", path, "books", n)
	return n, nil
}

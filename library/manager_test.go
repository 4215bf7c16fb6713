package library

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSeed(t *testing.T) {
	seeds, err := LoadSeed(strings.NewReader(`[
		{"title": "Dune", "author": "Frank Herbert", "category": "Fiction"},
		{"title": "SICP", "author": "Abelson", "category": "Programming"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []Seed{
		{Title: "Dune", Author: "Frank Herbert", Category: "Fiction"},
		{Title: "SICP", Author: "Abelson", Category: "Programming"},
	}, seeds)
}

func TestLoadSeedMalformed(t *testing.T) {
	_, err := LoadSeed(strings.NewReader(`{"title": `))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNewLibraryManagerStocksSamples(t *testing.T) {
	mgr, err := NewLibraryManager(ManagerOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(SampleBooks()), mgr.Len())
	assert.False(t, mgr.CanExport())

	_, err = mgr.Export(context.Background())
	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestNewLibraryManagerWithSeed(t *testing.T) {
	path := writeSeed(t, `[{"title": "Dune", "author": "Herbert", "category": "Fiction"}]`)

	var logs bytes.Buffer
	mgr, err := NewLibraryManager(ManagerOptions{
		NoSamples: true,
		SeedPath:  path,
		Logger:    slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo})),
	})
	require.NoError(t, err)
	require.Equal(t, 1, mgr.Len())

	b, err := mgr.Book(1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Contains(t, logs.String(), "seed loaded")
}

func TestNewLibraryManagerBadSeed(t *testing.T) {
	path := writeSeed(t, `[{"title": "", "author": "Herbert", "category": "Fiction"}]`)
	_, err := NewLibraryManager(ManagerOptions{SeedPath: path})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidInput, CodeOf(err))

	_, err = NewLibraryManager(ManagerOptions{SeedPath: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManagerExport(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "export.db")
	mgr, err := NewLibraryManager(ManagerOptions{
		ExportPath: path,
		Clock:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	require.True(t, mgr.CanExport())

	_, err = mgr.BorrowBook(6, "Bilbo")
	require.NoError(t, err)

	n, err := mgr.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	snap, err := OpenSnapshot(path)
	require.NoError(t, err)
	defer snap.Close()
	books, err := snap.Books(ctx)
	require.NoError(t, err)
	require.Len(t, books, 6)
	assert.Equal(t, "Bilbo", books[5].Borrower)
}

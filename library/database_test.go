package library

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempSnapshot(t *testing.T) (*Snapshot, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snap", "catalog.db")
	snap, err := OpenSnapshot(path)
	require.NoError(t, err)
	t.Cleanup(func() { snap.Close() })
	return snap, path
}

func TestSnapshotWriteAndRead(t *testing.T) {
	ctx := context.Background()
	snap, _ := tempSnapshot(t)
	lib := newLibrary(t)
	_, err := lib.BorrowBook(2, "Alice")
	require.NoError(t, err)

	n, err := snap.Write(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	count, err := snap.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	books, err := snap.Books(ctx)
	require.NoError(t, err)
	require.Len(t, books, 6)
	assert.Equal(t, "Clean Code", books[1].Title)
	assert.False(t, books[1].Available)
	assert.Equal(t, "Alice", books[1].Borrower)
	assert.Equal(t, DateOf(fixedNow), books[1].BorrowDate)
	assert.True(t, books[0].Available)
	assert.True(t, books[0].BorrowDate.IsZero())
}

func TestSnapshotWriteReplacesContents(t *testing.T) {
	ctx := context.Background()
	snap, _ := tempSnapshot(t)
	lib := newLibrary(t)

	_, err := snap.Write(ctx, lib)
	require.NoError(t, err)

	_, err = lib.AddBook("Dune", "Herbert", "Fiction")
	require.NoError(t, err)
	_, err = snap.Write(ctx, lib)
	require.NoError(t, err)

	count, err := snap.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestSnapshotReopenKeepsSchema(t *testing.T) {
	ctx := context.Background()
	snap, path := tempSnapshot(t)
	_, err := snap.Write(ctx, newLibrary(t))
	require.NoError(t, err)
	require.NoError(t, snap.Close())

	again, err := OpenSnapshot(path)
	require.NoError(t, err)
	defer again.Close()

	count, err := again.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

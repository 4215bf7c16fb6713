package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"library-catalog/library"
)

func main() {
	seedPath := flag.String("seed", "books.json", "JSON file of books to import")
	dbPath := flag.String("db", "catalog.db", "SQLite snapshot to (re)create")
	withSamples := flag.Bool("samples", false, "include the sample shelf before the seed books")
	flag.Parse()

	fmt.Println("Cleaning up existing snapshot...")
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: Could not remove %s: %v\n", *dbPath, err)
	}

	seeds, err := library.LoadSeedFile(*seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading seed file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Importing books from %s...\n", *seedPath)
	res, err := importBooks(context.Background(), os.Stdout, seeds, *withSamples, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", res.imported)
	fmt.Printf("Errors: %d\n", res.failed)
	fmt.Printf("Snapshot %s holds %d books\n", *dbPath, res.exported)

	if res.exported > 0 {
		fmt.Println("\nImported books:")
		fmt.Printf("%-3s %-40s %-25s %-20s\n", "ID", "Title", "Author", "Category")
		fmt.Println(strings.Repeat("-", 90))
		for _, b := range res.lib.Books() {
			fmt.Printf("%-3d %-40s %-25s %-20s\n", b.ID, truncateString(b.Title, 40), truncateString(b.Author, 25), truncateString(b.Category, 20))
		}
	}
}

type importResult struct {
	lib      *library.Library
	imported int
	failed   int
	exported int
}

// importBooks adds each seed, skipping (and reporting) invalid ones, then
// writes the resulting catalog to dbPath.
func importBooks(ctx context.Context, w io.Writer, seeds []library.Seed, withSamples bool, dbPath string) (importResult, error) {
	res := importResult{lib: library.New()}
	if withSamples {
		if _, err := res.lib.AddAll(library.SampleBooks()); err != nil {
			return res, fmt.Errorf("add samples: %w", err)
		}
	}

	for _, s := range seeds {
		fmt.Fprintf(w, "Importing: %s by %s... ", s.Title, s.Author)
		b, err := res.lib.AddBook(s.Title, s.Author, s.Category)
		if err != nil {
			fmt.Fprintf(w, "ERROR - %v\n", err)
			res.failed++
			continue
		}
		fmt.Fprintf(w, "SUCCESS (ID: %d)\n", b.ID)
		res.imported++
	}

	n, err := library.ExportTo(ctx, res.lib, dbPath)
	if err != nil {
		return res, fmt.Errorf("write snapshot: %w", err)
	}
	res.exported = n
	return res, nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

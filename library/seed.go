package library

import (
	"io"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SampleBooks is the starter shelf a fresh catalog is stocked with.
func SampleBooks() []Seed {
	return []Seed{
		{Title: "The Java Programming Language", Author: "James Gosling", Category: "Programming"},
		{Title: "Clean Code", Author: "Robert C. Martin", Category: "Programming"},
		{Title: "Data Structures and Algorithms", Author: "Thomas Cormen", Category: "Computer Science"},
		{Title: "Introduction to Algorithms", Author: "CLRS", Category: "Computer Science"},
		{Title: "Harry Potter", Author: "J.K. Rowling", Category: "Fiction"},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Category: "Fiction"},
	}
}

// LoadSeed decodes a JSON array of {"title","author","category"} objects.
func LoadSeed(r io.Reader) ([]Seed, error) {
	var seeds []Seed
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return nil, invalidInputCause("decode seed file", err)
	}
	return seeds, nil
}

// LoadSeedFile reads seeds from the file at path (relative paths resolve from cwd).
func LoadSeedFile(path string) ([]Seed, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSeed(f)
}

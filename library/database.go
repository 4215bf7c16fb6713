package library

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Snapshot writes the catalog to a SQLite file so it can be inspected or
// shared. The application never reads a snapshot back on startup.
type Snapshot struct {
	db *sql.DB

	insertBookStmt *sql.Stmt
}

// OpenSnapshot opens (or creates) the SQLite database at dbPath, applies
// schema migrations, and prepares the insert statement.
func OpenSnapshot(dbPath string) (*Snapshot, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Snapshot{db: db}
	if s.insertBookStmt, err = db.Prepare(`INSERT INTO books(id,title,author,category,available,borrower,borrow_date) VALUES(?,?,?,?,?,?,?)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return s, nil
}

// Close releases the prepared statement and closes the DB.
func (s *Snapshot) Close() error {
	if s.insertBookStmt != nil {
		s.insertBookStmt.Close()
	}
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            category TEXT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 1,
            borrower TEXT,
            borrow_date TEXT,
            CHECK ((available = 1 AND borrower IS NULL AND borrow_date IS NULL)
                OR (available = 0 AND borrower IS NOT NULL AND borrow_date IS NOT NULL))
        );`,
		`CREATE INDEX IF NOT EXISTS idx_books_category ON books(category);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// Write replaces the snapshot's contents with every book in lib, in one
// transaction. It returns the number of rows written.
func (s *Snapshot) Write(ctx context.Context, lib *Library) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return 0, fmt.Errorf("clear snapshot: %w", err)
	}

	insert := tx.StmtContext(ctx, s.insertBookStmt)
	books := lib.Books()
	for _, b := range books {
		var borrower, date sql.NullString
		if !b.Available {
			borrower = sql.NullString{String: b.Borrower, Valid: true}
			date = sql.NullString{String: b.BorrowDate.Time().Format("2006-01-02"), Valid: true}
		}
		if _, err := insert.ExecContext(ctx, b.ID, b.Title, b.Author, b.Category, b.Available, borrower, date); err != nil {
			return 0, fmt.Errorf("insert book %d: %w", b.ID, err)
		}
	}
	return len(books), tx.Commit()
}

// Count returns the number of books in the snapshot.
func (s *Snapshot) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Books reads the snapshot back in ID order.
func (s *Snapshot) Books(ctx context.Context) ([]*Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,author,category,available,COALESCE(borrower,''),COALESCE(borrow_date,'') FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		var (
			b    Book
			date string
		)
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.Available, &b.Borrower, &date); err != nil {
			return nil, err
		}
		if date != "" {
			t, err := parseISODate(date)
			if err != nil {
				return nil, fmt.Errorf("book %d: %w", b.ID, err)
			}
			b.BorrowDate = t
		}
		books = append(books, &b)
	}
	return books, rows.Err()
}

package library

import (
	"fmt"
	"time"
)

// DateLayout is the day-month-year layout used whenever a Date is shown.
const DateLayout = "02-01-2006"

// Date is a calendar day without a time of day. The zero value means "unset".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateLayout)
}

// MarshalJSON writes d as "dd-MM-yyyy", or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "dd-MM-yyyy", "" or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a %q string, got %s", DateLayout, s)
	}
	t, err := time.Parse(DateLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

// Book is one catalog entry and its lending state. Available is the only
// source of truth for whether the book is out; Borrower and BorrowDate are
// set together when it is and cleared together when it comes back.
type Book struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Category   string `json:"category"`
	Available  bool   `json:"available"`
	Borrower   string `json:"borrower,omitempty"`
	BorrowDate Date   `json:"borrow_date,omitzero"`
}

func newBook(id int, title, author, category string) *Book {
	return &Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Category:  category,
		Available: true,
	}
}

func (b *Book) markBorrowed(borrower string, on Date) {
	b.Available = false
	b.Borrower = borrower
	b.BorrowDate = on
}

func (b *Book) markReturned() {
	b.Available = true
	b.Borrower = ""
	b.BorrowDate = Date{}
}

// Status is "Available" or "Borrowed by <name>".
func (b *Book) Status() string {
	if b.Available {
		return "Available"
	}
	return "Borrowed by " + b.Borrower
}

func (b *Book) String() string {
	return fmt.Sprintf("ID: %d | Title: %s | Author: %s | Category: %s | Status: %s",
		b.ID, b.Title, b.Author, b.Category, b.Status())
}

// Return describes a completed return.
type Return struct {
	Book             *Book
	PreviousBorrower string
	BorrowedOn       Date
}

// CategoryCount is one row of the per-category breakdown.
type CategoryCount struct {
	Category string
	Books    int
}

// Stats is derived on demand from the catalog; nothing here is stored.
type Stats struct {
	Total      int
	Available  int
	Borrowed   int
	Categories []CategoryCount
}

func parseISODate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

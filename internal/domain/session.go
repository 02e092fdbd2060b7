package domain

import (
	"fmt"
	"strings"
)

// DefaultSessionTitle is used until a session is saved or loaded
const DefaultSessionTitle = "Untitled Session"

// ProductEntry is one row of user input. All values are kept as typed;
// price and quantity are parsed only when the session is evaluated.
type ProductEntry struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	UnitType string `json:"unitType"`
	Unit     string `json:"unit"`
	Store    string `json:"store,omitempty"`
	URL      string `json:"url,omitempty"`
}

// IsBlank reports whether the row carries nothing the ranking engine can use.
// Store and URL are informational and do not make a row non-blank.
func (p ProductEntry) IsBlank() bool {
	return isBlank(p.Name) && isBlank(p.Price) && isBlank(p.Quantity) && isBlank(p.Unit)
}

// IsEmpty reports whether every user-editable field is blank.
// Empty rows are never written to a session document.
func (p ProductEntry) IsEmpty() bool {
	return p.IsBlank() && isBlank(p.Store) && isBlank(p.URL)
}

// DisplayName returns the entered name or the positional placeholder
func (p ProductEntry) DisplayName(row int) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return PlaceholderName(row)
}

// PlaceholderName is the name given to an unnamed product at the 0-based row
func PlaceholderName(row int) string {
	return fmt.Sprintf("Product %d", row+1)
}

// Session is the aggregate a user edits: a title, the locked family and the rows
type Session struct {
	Title    string            `json:"title"`
	Family   MeasurementFamily `json:"unitType,omitempty"`
	Products []ProductEntry    `json:"products"`
}

// NewSession returns an untitled session with one blank row
func NewSession() *Session {
	return &Session{
		Title:    DefaultSessionTitle,
		Products: []ProductEntry{{}},
	}
}

// Clone returns a deep copy safe to hand to another goroutine
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Products = append([]ProductEntry(nil), s.Products...)
	return &clone
}

// HasData reports whether any row holds user input
func (s *Session) HasData() bool {
	for _, p := range s.Products {
		if !p.IsEmpty() {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

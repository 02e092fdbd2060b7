package document

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/unitcost/backend/internal/domain"
)

// rootTag is the required root of every session document
const rootTag = "session"

// sessionDocument is the persisted shape of a session. Field names are shared
// by every codec so a document keeps its meaning across formats.
type sessionDocument struct {
	XMLName  xml.Name          `xml:"session" json:"-" msgpack:"-"`
	Title    string            `xml:"title" json:"title" msgpack:"title"`
	UnitType string            `xml:"unit_type,omitempty" json:"unit_type,omitempty" msgpack:"unit_type,omitempty"`
	Products []productDocument `xml:"products>product" json:"products" msgpack:"products"`
}

type productDocument struct {
	Name     string `xml:"name" json:"name" msgpack:"name"`
	Price    string `xml:"price" json:"price" msgpack:"price"`
	Quantity string `xml:"quantity" json:"quantity" msgpack:"quantity"`
	UnitType string `xml:"unit_type" json:"unit_type" msgpack:"unit_type"`
	Unit     string `xml:"unit" json:"unit" msgpack:"unit"`
	Store    string `xml:"store" json:"store" msgpack:"store"`
	URL      string `xml:"url" json:"url" msgpack:"url"`
}

// envelope wraps the document for formats without a named root element
type envelope struct {
	Session *sessionDocument `json:"session" msgpack:"session"`
}

// toDocument maps a session to its persisted shape, dropping empty rows.
// Values are written exactly as entered.
func toDocument(session *domain.Session) *sessionDocument {
	doc := &sessionDocument{
		Title:    session.Title,
		UnitType: string(session.Family),
		Products: make([]productDocument, 0, len(session.Products)),
	}

	for _, p := range session.Products {
		if p.IsEmpty() {
			continue
		}
		doc.Products = append(doc.Products, productDocument{
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
			UnitType: p.UnitType,
			Unit:     p.Unit,
			Store:    p.Store,
			URL:      p.URL,
		})
	}

	return doc
}

// fromDocument maps a decoded document to a session. Unit symbols are not
// checked here; unknown symbols surface as row errors when ranking.
func fromDocument(doc *sessionDocument) (*domain.Session, error) {
	session := &domain.Session{
		Title:    strings.TrimSpace(doc.Title),
		Products: make([]domain.ProductEntry, 0, len(doc.Products)),
	}

	if unitType := strings.TrimSpace(doc.UnitType); unitType != "" {
		family, err := domain.ParseFamily(unitType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
		}
		session.Family = family
	}

	for _, p := range doc.Products {
		session.Products = append(session.Products, domain.ProductEntry{
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
			UnitType: p.UnitType,
			Unit:     p.Unit,
			Store:    p.Store,
			URL:      p.URL,
		})
	}

	return session, nil
}

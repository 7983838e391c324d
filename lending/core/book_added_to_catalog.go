package core

import (
	"time"

	"github.com/google/uuid"
)

// BookAddedToCatalogEventType is the event type identifier.
const BookAddedToCatalogEventType = "BookAddedToCatalog"

// BookAddedToCatalog represents when a book with its copies enters the catalog.
type BookAddedToCatalog struct {
	BookID      BookIDString
	Title       string
	Author      string
	Year        int
	Language    string
	Category    string
	CopiesTotal int
	OccurredAt  OccurredAt
}

// BuildBookAddedToCatalog creates a new BookAddedToCatalog event.
func BuildBookAddedToCatalog(
	bookID uuid.UUID,
	title string,
	author string,
	year int,
	language string,
	category string,
	copiesTotal int,
	occurredAt time.Time,
) BookAddedToCatalog {

	return BookAddedToCatalog{
		BookID:      bookID.String(),
		Title:       title,
		Author:      author,
		Year:        year,
		Language:    language,
		Category:    category,
		CopiesTotal: copiesTotal,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookAddedToCatalog) IsEventType() string {
	return BookAddedToCatalogEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookAddedToCatalog) HasOccurredAt() time.Time {
	return e.OccurredAt
}

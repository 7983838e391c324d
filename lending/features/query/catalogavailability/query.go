package catalogavailability

import (
	"strings"
	"time"
)

const (
	queryType = "CatalogAvailability"
)

// Query represents the intent to list the catalog with availabilities at At.
// Every non-empty criterion restricts the list: Category and Language match exactly,
// Search matches a case-insensitive substring of the title or the author.
type Query struct {
	At       time.Time
	Category string
	Language string
	Search   string
}

// BuildQuery creates a new Query.
func BuildQuery(at time.Time, category string, language string, search string) Query {
	return Query{
		At:       at,
		Category: category,
		Language: language,
		Search:   strings.TrimSpace(search),
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

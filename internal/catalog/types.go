// Package catalog maintains the component price table and the fuzzy
// search/ranking over it.
package catalog

// Entry is one priced component row. Prices are whole dollars.
type Entry struct {
	ID        int64  `db:"id" json:"id"`
	Kind      string `db:"component_type" json:"type"`
	Name      string `db:"component_name" json:"name"`
	Price     int    `db:"average_price_dollar" json:"price"`
	Category  string `db:"category" json:"category"`
	SourceURL string `db:"component_url" json:"url,omitempty"`
}

// Match is a catalog entry with its relevance score for a query.
type Match struct {
	Entry
	Score int `json:"score"`
}

// SearchOptions narrows a search. Kind, when set, restricts matches to one
// component type; the conversation flow leaves it empty (see DESIGN.md).
type SearchOptions struct {
	Kind  string
	Limit int // 0 = unlimited
}

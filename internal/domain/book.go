package domain

// Book is a catalog entry saved by a user. It has no identity of its own
// outside the owning user's collection; BookID is the external catalog ID and
// is unique within one collection.
type Book struct {
	BookID      string   `json:"bookId"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Link        string   `json:"link,omitempty"`
}

// UniqueBooks returns books with repeated BookIDs removed.
// The first occurrence of each BookID wins.
func UniqueBooks(books []Book) []Book {
	out := make([]Book, 0, len(books))
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		if _, ok := seen[b.BookID]; ok {
			continue
		}
		seen[b.BookID] = struct{}{}
		out = append(out, b)
	}
	return out
}

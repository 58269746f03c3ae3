package model

// Book is a catalog entry as served by the BiblioTech backend. Values are
// immutable once decoded from an upstream response.
type Book struct {
	ID       *int   `json:"id"`
	ISBN     string `json:"isbn"`
	Title    string `json:"titulo"`
	Author   string `json:"autor"`
	Category string `json:"categoria"`
	Year     *int   `json:"anio"`
}

// DefaultCategory is assumed when the upstream omits one.
const DefaultCategory = "General"

// Normalize fills defaults the upstream may leave empty.
func (b *Book) Normalize() {
	if b.Category == "" {
		b.Category = DefaultCategory
	}
}

// CatalogQuery identifies a catalog lookup. All fields are optional; the zero
// value means "everything". Two queries address the same cached result iff
// all three fields are equal, so the struct must stay comparable.
type CatalogQuery struct {
	Search   string
	Category string
	Limit    int
}

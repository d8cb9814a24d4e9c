package model

// Page is the paging envelope every list endpoint returns. Content order is
// whatever the server chose.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// Items returns the page content, tolerating a nil page.
func (p *Page[T]) Items() []T {
	if p == nil {
		return nil
	}
	return p.Content
}

// First returns the first element of the page, if any.
func (p *Page[T]) First() (T, bool) {
	var zero T
	if p == nil || len(p.Content) == 0 {
		return zero, false
	}
	return p.Content[0], true
}

package common

import "net/http"

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	Returned int `json:"returned"`
}

// ParsePagination reads ?page and ?limit, capping limit at maxPerPage when it
// is positive.
func ParsePagination(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = QueryInt(r, "page", 1)
	perPage = QueryInt(r, "limit", defaultPerPage)
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// Offset returns the zero-based row offset for page and perPage.
func Offset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * perPage
}

package listutil

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Page size bounds.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ErrInvalidParam is returned for malformed paging values.
var ErrInvalidParam = errors.New("invalid list parameter")

// Params carries the paging and filter values of a list request.
type Params struct {
	Page     int    // 1-indexed page number
	PerPage  int    // rows per page
	Search   string // free text matched against title and city
	Category string // exact category match
}

// Parse reads page, limit, q and category from query values.
// PRE: none
// POST: always returns usable Params (bad values fall back to defaults);
// err wraps ErrInvalidParam when page or limit was present but malformed
func Parse(q url.Values) (Params, error) {
	p := Params{
		Page:     1,
		PerPage:  DefaultPerPage,
		Search:   strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	var errs []error
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, fmt.Errorf("%w: page must be a positive integer", ErrInvalidParam))
		} else {
			p.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidParam))
		} else {
			p.PerPage = min(n, MaxPerPage)
		}
	}
	return p, errors.Join(errs...)
}

// Query encodes the filters with the given page, for pagination links.
func (p Params) Query(page int) string {
	v := url.Values{}
	if p.Search != "" {
		v.Set("q", p.Search)
	}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.PerPage != DefaultPerPage {
		v.Set("limit", strconv.Itoa(p.PerPage))
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage)
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), totalPages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row on the page, or 0 when empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row on the page.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// ShowPagination reports whether the rows span more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

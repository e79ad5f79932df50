package dto

import (
	"net/url"
	"strconv"
)

const MaxPageSize = 100

// Pagination is a validated page request.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ParsePagination reads page and page_size from q. Missing or malformed
// values fall back to page 1 and defaultSize; page_size is capped.
func ParsePagination(q url.Values, defaultSize int) Pagination {
	p := Pagination{Page: 1, PageSize: defaultSize}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v > 0 {
		p.PageSize = v
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Page is the envelope of every list response.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope; self is the absolute URL of the current request
// and is used to derive the next/previous links.
func NewPage[T any](results []T, count int64, p Pagination, self *url.URL) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: count, Results: results}

	if self != nil {
		if int64(p.Page*p.PageSize) < count {
			page.Next = pageLink(self, p.Page+1)
		}
		if p.Page > 1 {
			page.Previous = pageLink(self, p.Page-1)
		}
	}
	return page
}

func pageLink(self *url.URL, n int) *string {
	u := *self
	q := u.Query()
	if n == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultPerPage is the page size used when a request does not ask for one.
	DefaultPerPage = 15
	// MaxPerPage caps how many items a single page may carry.
	MaxPerPage = 100

	// PageParam and PerPageParam are the query parameters read by FromRequest
	// and written into links.
	PageParam    = "page"
	PerPageParam = "per_page"
)

// Params holds the page inputs parsed from a request.
type Params struct {
	Page    int
	PerPage int
}

// Offset returns the number of items to skip for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is one length-aware slice of a larger result set.
type Page struct {
	Items       any
	Total       int64
	PerPage     int
	CurrentPage int
}

// Links carries absolute or path-relative URLs for neighbouring pages.
// Prev and Next are null at the edges.
type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// Meta summarizes the page position.
type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	PerPage     int   `json:"per_page"`
}

// NormalizePerPage enforces the default and maximum page sizes.
func NormalizePerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// NormalizePage enforces a 1-based page number.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// FromRequest reads page and per_page from the query string. Missing or
// malformed values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get(PageParam))
	perPage, _ := strconv.Atoi(q.Get(PerPageParam))
	return Params{
		Page:    NormalizePage(page),
		PerPage: NormalizePerPage(perPage),
	}
}

// New builds a page for the given params.
func New(items any, total int64, params Params) Page {
	return Page{
		Items:       items,
		Total:       total,
		PerPage:     params.PerPage,
		CurrentPage: params.Page,
	}
}

// Normalize returns a copy with page size and number clamped.
func (p Page) Normalize() Page {
	p.PerPage = NormalizePerPage(p.PerPage)
	p.CurrentPage = NormalizePage(p.CurrentPage)
	if p.Total < 0 {
		p.Total = 0
	}
	return p
}

// TotalPages is ceil(total / perPage), never less than one.
func (p Page) TotalPages() int {
	p = p.Normalize()
	per := int64(p.PerPage)
	pages := int(p.Total / per)
	if p.Total%per != 0 {
		pages++
	}
	if pages < 1 {
		return 1
	}
	return pages
}

// HasMore reports whether a page follows the current one.
func (p Page) HasMore() bool {
	p = p.Normalize()
	return p.CurrentPage < p.TotalPages()
}

// MetaFor summarizes p.
func MetaFor(p Page) Meta {
	p = p.Normalize()
	return Meta{
		Total:       p.Total,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages(),
		PerPage:     p.PerPage,
	}
}

// LinksFor derives the page links from base, keeping its other query
// parameters and rewriting only page.
func LinksFor(base *url.URL, p Page) Links {
	p = p.Normalize()
	last := p.TotalPages()

	links := Links{
		First: pageURL(base, 1),
		Last:  pageURL(base, last),
	}
	if p.CurrentPage > 1 {
		prev := pageURL(base, min(p.CurrentPage-1, last))
		links.Prev = &prev
	}
	if p.CurrentPage < last {
		next := pageURL(base, p.CurrentPage+1)
		links.Next = &next
	}
	return links
}

func pageURL(base *url.URL, page int) string {
	if base == nil {
		base = &url.URL{}
	}
	u := *base
	q := u.Query()
	q.Set(PageParam, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}

// Package query derives the visible slice of links from the full list:
// search and tag filtering, the tag facet, and pagination. Everything here
// is pure; callers own the state.
package query

import (
	"sort"
	"strings"

	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"golang.org/x/text/cases"
)

// ItemsPerPage is the default page size.
const ItemsPerPage = 4

// Params selects a view of the link list. Page is 1-based.
type Params struct {
	Search  string
	Tag     string
	Page    int
	PerPage int
}

// Result is one page of filtered links plus the numbers needed for
// "Showing From-To of Total links".
type Result struct {
	Links      []domain.Link
	Page       int
	TotalPages int
	Total      int // after filtering
	From       int // 1-based, 0 when the page is empty
	To         int
}

// Run filters links and returns the requested page.
func Run(links []domain.Link, p Params) Result {
	filtered := Filter(links, p.Search, p.Tag)
	perPage := p.PerPage
	if perPage < 1 {
		perPage = ItemsPerPage
	}
	page := max(p.Page, 1)

	items, totalPages := Paginate(filtered, page, perPage)
	res := Result{
		Links:      items,
		Page:       page,
		TotalPages: totalPages,
		Total:      len(filtered),
	}
	if len(items) > 0 {
		res.From = (page-1)*perPage + 1
		res.To = res.From + len(items) - 1
	}
	return res
}

type matcher struct {
	search string
	tag    string
}

func newMatcher(search, tag string) matcher {
	fold := cases.Fold()
	return matcher{search: fold.String(search), tag: fold.String(tag)}
}

// match reports whether a link passes both filters. Matching is by
// case-folded substring, so a tag filter of "js" also selects "javascript".
func (m matcher) match(l domain.Link) bool {
	fold := cases.Fold()
	tags := fold.String(l.Tags)

	if m.search != "" && !strings.Contains(fold.String(l.Title), m.search) && !strings.Contains(tags, m.search) {
		return false
	}
	if m.tag != "" && !strings.Contains(tags, m.tag) {
		return false
	}
	return true
}

// Matches reports whether a single link passes the search and tag filters.
func Matches(l domain.Link, search, tag string) bool {
	return newMatcher(search, tag).match(l)
}

// Filter keeps the links that match, preserving order.
func Filter(links []domain.Link, search, tag string) []domain.Link {
	m := newMatcher(search, tag)
	out := make([]domain.Link, 0, len(links))
	for _, l := range links {
		if m.match(l) {
			out = append(out, l)
		}
	}
	return out
}

// Facet returns every distinct tag across links, trimmed, without empty
// segments, sorted.
func Facet(links []domain.Link) []string {
	seen := make(map[string]struct{})
	for _, l := range links {
		for _, tag := range l.TagList() {
			if tag == "" {
				continue
			}
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TotalPages is ceil(n / perPage).
func TotalPages(n, perPage int) int {
	if perPage < 1 {
		perPage = ItemsPerPage
	}
	return (n + perPage - 1) / perPage
}

// Paginate returns the links of a 1-based page and the page count. A page
// outside [1, totalPages] yields an empty slice.
func Paginate(links []domain.Link, page, perPage int) ([]domain.Link, int) {
	if perPage < 1 {
		perPage = ItemsPerPage
	}
	total := TotalPages(len(links), perPage)
	if page < 1 || page > total {
		return []domain.Link{}, total
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(links))
	return links[start:end], total
}

// ClampPage moves page into [1, totalPages], or 1 when there are no pages.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	return max(page, 1)
}

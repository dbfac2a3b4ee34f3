package listing

// PageLink is one entry of a pagination control. A Gap entry stands for
// one or more skipped pages and carries no page number.
type PageLink struct {
	Page    int  `json:"page,omitempty" yaml:"page,omitempty"`
	Current bool `json:"current,omitempty" yaml:"current,omitempty"`
	Gap     bool `json:"gap,omitempty" yaml:"gap,omitempty"`
}

// Window is what a pagination control renders for one result page.
type Window struct {
	Page       int        `json:"page" yaml:"page"`
	TotalPages int        `json:"total_pages" yaml:"total_pages"`
	Links      []PageLink `json:"links" yaml:"links"`
	Prev       int        `json:"prev,omitempty" yaml:"prev,omitempty"`
	Next       int        `json:"next,omitempty" yaml:"next,omitempty"`
}

// HasPrev reports whether a previous page exists.
func (w Window) HasPrev() bool { return w.Prev > 0 }

// HasNext reports whether a next page exists.
func (w Window) HasNext() bool { return w.Next > 0 }

// Paginate computes the pagination window: the first and last page, the
// current page and up to siblings pages on each side of it. A gap that would
// hide exactly one page shows that page instead.
func Paginate(page, totalPages, siblings int) Window {
	if totalPages < 1 {
		return Window{Page: 1}
	}
	page = min(max(page, 1), totalPages)
	siblings = max(siblings, 0)

	w := Window{Page: page, TotalPages: totalPages}
	if page > 1 {
		w.Prev = page - 1
	}
	if page < totalPages {
		w.Next = page + 1
	}

	lo := max(page-siblings, 1)
	hi := min(page+siblings, totalPages)

	var pages []int
	pages = append(pages, 1)
	for p := max(lo, 2); p <= hi; p++ {
		pages = append(pages, p)
	}
	if pages[len(pages)-1] != totalPages {
		pages = append(pages, totalPages)
	}

	prev := 0
	for _, p := range pages {
		switch d := p - prev; {
		case prev == 0:
		case d == 2:
			w.Links = append(w.Links, PageLink{Page: prev + 1})
		case d > 2:
			w.Links = append(w.Links, PageLink{Gap: true})
		}
		w.Links = append(w.Links, PageLink{Page: p, Current: p == page})
		prev = p
	}
	return w
}

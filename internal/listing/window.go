package listing

// PageLink is one slot of a pagination control: either a page number or an
// ellipsis marker.
type PageLink struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// Window returns the pagination slots for current of total pages.
//
// Pages 1, total and current-1..current+1 are shown. Positions current-2 and
// current+2 render an ellipsis when they are not already shown. Every other
// page renders nothing.
func Window(current, total int) []PageLink {
	if total < 1 {
		total = 1
	}
	current = max(1, min(current, total))

	links := make([]PageLink, 0, 7)
	for p := 1; p <= total; p++ {
		switch {
		case p == 1 || p == total || (p >= current-1 && p <= current+1):
			links = append(links, PageLink{Number: p, Current: p == current})
		case p == current-2 || p == current+2:
			links = append(links, PageLink{Ellipsis: true})
		}
	}
	return links
}

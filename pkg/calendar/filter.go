package calendar

import "strings"

// Filter keeps the posts satisfying every active predicate: platform
// exact match, status exact match, case-insensitive substring search on
// content. Input order is preserved.
func Filter(posts []Post, f FilterOptions) []Post {
	query := strings.ToLower(f.SearchQuery)

	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if f.Platform != "" && f.Platform != "all" && p.Platform != f.Platform {
			continue
		}
		if f.Status != "" && f.Status != "all" && p.Status != f.Status {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Content), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

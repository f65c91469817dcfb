// Package calendar is the client-side data layer: a typed API client, a
// disposable post cache and the filter logic the UI applies to it. The
// cache is never the source of truth; Refresh replaces it wholesale.
package calendar

import "time"

type Post struct {
	ID            uint64    `json:"id"`
	UserID        string    `json:"userId,omitempty"`
	Platform      string    `json:"platform"`
	Content       string    `json:"content"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// FilterOptions narrow a post collection. Empty values and the sentinel
// "all" disable the corresponding predicate.
type FilterOptions struct {
	Platform    string
	Status      string
	SearchQuery string
}

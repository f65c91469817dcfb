package calendar

import (
	"context"
	"sync"
	"time"
)

// Store caches the most recently fetched post collection. It is a
// throwaway view over the API, refreshed wholesale.
type Store struct {
	mu     sync.RWMutex
	client *Client
	posts  []Post
	mock   bool
}

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// NewMockStore is seeded with sample data and never touches the network.
func NewMockStore() *Store {
	return &Store{posts: mockPosts(), mock: true}
}

// Refresh replaces the cached collection with the server's.
func (s *Store) Refresh(ctx context.Context) error {
	if s.mock {
		return nil
	}
	posts, err := s.client.FetchPosts(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	return nil
}

// Posts returns a copy of the cached collection.
func (s *Store) Posts() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Filtered applies Filter to the cached collection.
func (s *Store) Filtered(f FilterOptions) []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.posts, f)
}

func mockPosts() []Post {
	now := time.Now()
	day := 24 * time.Hour
	return []Post{
		{ID: 1, Platform: "Twitter", Status: "ready",
			Content:       "Check out our latest product update! We've added new features that will help you boost your productivity.",
			ScheduledTime: now.Add(1 * day), CreatedAt: now, UpdatedAt: now},
		{ID: 2, Platform: "LinkedIn", Status: "needs_approval",
			Content:       "We are hiring! Join our amazing team and work on cutting-edge projects that make a difference.",
			ScheduledTime: now.Add(2 * day), CreatedAt: now, UpdatedAt: now},
		{ID: 3, Platform: "Instagram", Status: "scheduled",
			Content:       "Behind the scenes at our company retreat! Our team building activities helped foster creativity and collaboration.",
			ScheduledTime: now.Add(3 * day), CreatedAt: now, UpdatedAt: now},
		{ID: 4, Platform: "Facebook", Status: "draft",
			Content:       "Customer Spotlight: How ABC Corp increased productivity by 200% using our platform. Read their success story!",
			ScheduledTime: now.Add(4 * day), CreatedAt: now, UpdatedAt: now},
		{ID: 5, Platform: "Twitter", Status: "scheduled",
			Content:       "Join our webinar next week to learn about the latest industry trends and how to stay ahead of the competition.",
			ScheduledTime: now.Add(5 * day), CreatedAt: now, UpdatedAt: now},
		{ID: 6, Platform: "Instagram", Status: "ready",
			Content:       "New product alert! We're excited to announce our latest feature that will revolutionize how you work.",
			ScheduledTime: now.Add(6 * day), CreatedAt: now, UpdatedAt: now},
		{ID: 7, Platform: "LinkedIn", Status: "scheduled",
			Content:       "We're proud to announce that we've been recognized as a leader in our industry for the third year in a row!",
			ScheduledTime: now.Add(7 * day), CreatedAt: now, UpdatedAt: now},
	}
}

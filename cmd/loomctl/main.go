// loomctl is a small terminal client over the calendar API: list and
// filter scheduled posts, or generate content for a prompt.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/postloom/postloom/pkg/calendar"
)

func main() {
	var (
		baseURL  = flag.String("api", envOr("POSTLOOM_API", "http://localhost:3001"), "API base URL")
		token    = flag.String("token", os.Getenv("POSTLOOM_TOKEN"), "session token")
		platform = flag.String("platform", "", "filter by platform")
		status   = flag.String("status", "", "filter by status")
		search   = flag.String("search", "", "filter by content substring")
		prompt   = flag.String("generate", "", "generate content for a prompt instead of listing")
		mock     = flag.Bool("mock", false, "use built-in sample data, no server needed")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := calendar.NewClient(*baseURL)
	if *token != "" {
		client = client.WithToken(*token)
	}

	if *prompt != "" {
		content, err := client.GenerateContent(ctx, *prompt, *platform)
		if err != nil {
			log.Fatalf("generate: %v", err)
		}
		fmt.Println(content)
		return
	}

	var store *calendar.Store
	if *mock {
		store = calendar.NewMockStore()
	} else {
		store = calendar.NewStore(client)
		if err := store.Refresh(ctx); err != nil {
			log.Fatalf("fetch posts: %v", err)
		}
	}

	posts := store.Filtered(calendar.FilterOptions{
		Platform:    *platform,
		Status:      *status,
		SearchQuery: *search,
	})
	if len(posts) == 0 {
		fmt.Println("no posts")
		return
	}
	for _, p := range posts {
		fmt.Printf("%-4d %-10s %-15s %s\n    %s\n",
			p.ID, p.Platform, p.Status, p.ScheduledTime.Format(time.RFC3339), p.Content)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/postloom/postloom/internal/types"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testPost(platform string, at time.Time) *types.Post {
	return &types.Post{
		UserID:        "demo-user",
		Platform:      platform,
		Content:       "hello world",
		ScheduledTime: at,
	}
}

func TestCreatePostRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	post := testPost("Twitter", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := st.CreatePost(ctx, post); err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.ID == 0 {
		t.Fatalf("no id assigned")
	}
	if !post.CreatedAt.Equal(post.UpdatedAt) {
		t.Fatalf("createdAt != updatedAt at creation: %v vs %v", post.CreatedAt, post.UpdatedAt)
	}
	if post.Status != types.StatusDraft {
		t.Fatalf("default status = %q, want draft", post.Status)
	}

	got, err := st.FindPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Content != post.Content || got.Platform != post.Platform ||
		!got.ScheduledTime.Equal(post.ScheduledTime) || got.Status != post.Status {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, post)
	}
}

func TestCreatePostIDsNotReused(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seen := map[uint64]bool{}
	for i := 0; i < 5; i++ {
		p := testPost("Twitter", time.Now().Add(time.Duration(i)*time.Hour))
		if err := st.CreatePost(ctx, p); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[p.ID] {
			t.Fatalf("id %d issued twice", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestCreatePostValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	cases := []*types.Post{
		{UserID: "u", Platform: "Twitter", ScheduledTime: time.Now()},               // no content
		{UserID: "u", Content: "hi", ScheduledTime: time.Now()},                     // no platform
		{UserID: "u", Platform: "Twitter", Content: "hi"},                           // no time
		{UserID: "u", Platform: "X", Content: "hi", ScheduledTime: time.Now(), Status: "bogus"}, // bad status
	}
	for i, p := range cases {
		err := st.CreatePost(ctx, p)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("case %d: want ValidationError, got %v", i, err)
		}
	}
}

func TestFindAllPostsOrdered(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, offset := range []int{3, 1, 2} {
		if err := st.CreatePost(ctx, testPost("Twitter", base.Add(time.Duration(offset)*time.Hour))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	// Another user's post must not show up.
	other := testPost("Twitter", base)
	other.UserID = "someone-else"
	if err := st.CreatePost(ctx, other); err != nil {
		t.Fatalf("create other: %v", err)
	}

	posts, err := st.FindAllPosts(ctx, "demo-user")
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}
	for i := 1; i < len(posts); i++ {
		if posts[i].ScheduledTime.Before(posts[i-1].ScheduledTime) {
			t.Fatalf("posts not ascending by scheduledTime")
		}
	}
}

func TestUpdatePost(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	post := testPost("LinkedIn", time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC))
	if err := st.CreatePost(ctx, post); err != nil {
		t.Fatalf("create: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	status := types.StatusPublished
	updated, err := st.UpdatePost(ctx, post.ID, PostUpdate{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != types.StatusPublished {
		t.Fatalf("status = %q", updated.Status)
	}
	if updated.Content != post.Content || updated.Platform != post.Platform ||
		!updated.ScheduledTime.Equal(post.ScheduledTime) {
		t.Fatalf("unrelated fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(post.UpdatedAt) {
		t.Fatalf("updatedAt did not increase: %v vs %v", updated.UpdatedAt, post.UpdatedAt)
	}

	bad := "bogus"
	if _, err := st.UpdatePost(ctx, post.ID, PostUpdate{Status: &bad}); err == nil {
		t.Fatalf("bad status accepted")
	}
	if _, err := st.UpdatePost(ctx, 99999, PostUpdate{Status: &status}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeletePost(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	post := testPost("Twitter", time.Now())
	if err := st.CreatePost(ctx, post); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeletePost(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if _, err := st.FindPostByID(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted post still found")
	}
}

func TestUpsertSocialAccount(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := st.UpsertSocialAccount(ctx, &types.SocialAccount{
		UserID: "demo-user", Platform: "Twitter",
		Username: "alice", AccessToken: "tok1", Connected: true,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := st.UpsertSocialAccount(ctx, &types.SocialAccount{
		UserID: "demo-user", Platform: "Twitter",
		Username: "alice2", AccessToken: "tok2", Connected: true,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a new row: %d vs %d", second.ID, first.ID)
	}
	if second.Username != "alice2" || second.AccessToken != "tok2" {
		t.Fatalf("second upsert did not override: %+v", second)
	}

	accts, err := st.FindAllSocialAccounts(ctx, "demo-user")
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(accts) != 1 {
		t.Fatalf("got %d rows, want 1", len(accts))
	}
}

func TestUpdateSocialAccount(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.UpdateSocialAccount(ctx, "", "Twitter", AccountUpdate{}); err == nil {
		t.Fatalf("missing userId accepted")
	}
	if _, err := st.UpdateSocialAccount(ctx, "demo-user", "Twitter", AccountUpdate{}); err == nil {
		t.Fatalf("empty update set accepted")
	}

	connected := false
	if _, err := st.UpdateSocialAccount(ctx, "demo-user", "Twitter",
		AccountUpdate{Connected: &connected}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	if _, err := st.UpsertSocialAccount(ctx, &types.SocialAccount{
		UserID: "demo-user", Platform: "Twitter",
		Username: "alice", AccessToken: "tok", Connected: true,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	acct, err := st.UpdateSocialAccount(ctx, "demo-user", "Twitter",
		AccountUpdate{Connected: &connected})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if acct.Connected {
		t.Fatalf("still connected after disconnect")
	}
	// Soft disconnect keeps the row.
	if _, err := st.FindSocialAccountByPlatform(ctx, "demo-user", "Twitter"); err != nil {
		t.Fatalf("row gone after disconnect: %v", err)
	}
}

func TestDeleteSocialAccount(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.DeleteSocialAccount(ctx, "demo-user", "Twitter"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := st.UpsertSocialAccount(ctx, &types.SocialAccount{
		UserID: "demo-user", Platform: "Twitter",
		Username: "alice", AccessToken: "tok", Connected: true,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.DeleteSocialAccount(ctx, "demo-user", "Twitter"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

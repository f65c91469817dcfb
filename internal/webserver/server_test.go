package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/postloom/postloom/internal/ai"
	"github.com/postloom/postloom/internal/config"
	"github.com/postloom/postloom/internal/notify"
	"github.com/postloom/postloom/internal/store"
	"github.com/postloom/postloom/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProvider struct {
	reply string
	err   error
}

func (f fakeProvider) Complete(context.Context, string, ai.Options) (string, error) {
	return f.reply, f.err
}

func testConfig() config.Config {
	return config.Config{
		Port:         "0",
		ClientURL:    "http://localhost:3000",
		JWTSecret:    "test-secret",
		AIRateLimit:  100,
		AIRateWindow: time.Minute,
	}
}

func newTestServer(t *testing.T, svc *ai.Service) (*gin.Engine, store.Store) {
	t.Helper()
	st, err := store.Open(store.Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("store init: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if svc == nil {
		svc = ai.NewServiceWithProvider(fakeProvider{reply: "generated copy"})
	}
	return New(testConfig(), st, nil, svc, notify.Nop{}), st
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func connectTwitter(t *testing.T, r *gin.Engine) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/social-accounts/Twitter", gin.H{
		"username":    "alice",
		"accessToken": "tok",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("connect: %d %s", w.Code, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t, nil)
	for _, path := range []string{"/health", "/api/health"} {
		w := doJSON(t, r, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, w.Code)
		}
	}
}

func TestCreatePostRequiresConnectedAccount(t *testing.T) {
	r, _ := newTestServer(t, nil)
	payload := gin.H{
		"content":       "hi",
		"platform":      "Twitter",
		"scheduledTime": "2025-01-01T00:00:00Z",
	}

	w := doJSON(t, r, http.MethodPost, "/api/calendar/posts", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("without account: got %d, want 400", w.Code)
	}

	connectTwitter(t, r)

	w = doJSON(t, r, http.MethodPost, "/api/calendar/posts", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("with account: got %d %s, want 201", w.Code, w.Body.String())
	}
	var post types.Post
	if err := json.Unmarshal(w.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if post.ID == 0 {
		t.Fatalf("no id in response")
	}
	if post.Status != types.StatusDraft {
		t.Fatalf("status = %q, want draft", post.Status)
	}
}

func TestCreatePostValidation(t *testing.T) {
	r, _ := newTestServer(t, nil)
	connectTwitter(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/calendar/posts", gin.H{"platform": "Twitter"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/calendar/posts", gin.H{
		"content":       "hi",
		"platform":      "Twitter",
		"scheduledTime": "2025-01-01T00:00:00Z",
		"status":        "bogus",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: got %d", w.Code)
	}
}

func TestPostLifecycle(t *testing.T) {
	r, _ := newTestServer(t, nil)
	connectTwitter(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/calendar/posts", gin.H{
		"content":       "launch day",
		"platform":      "Twitter",
		"scheduledTime": "2025-03-01T09:00:00Z",
		"status":        "scheduled",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created types.Post
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// list
	w = doJSON(t, r, http.MethodGet, "/api/calendar", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var posts []types.Post
	if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}

	// partial update
	time.Sleep(20 * time.Millisecond)
	w = doJSON(t, r, http.MethodPatch, "/api/calendar/posts/"+itoa(created.ID), gin.H{"status": "published"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body.String())
	}
	var updated types.Post
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Status != types.StatusPublished || updated.Content != created.Content {
		t.Fatalf("merge broke fields: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updatedAt not bumped")
	}

	// delete
	w = doJSON(t, r, http.MethodDelete, "/api/calendar/posts/"+itoa(created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/calendar/posts/"+itoa(created.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d, want 404", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/calendar/posts/"+itoa(created.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get deleted: got %d, want 404", w.Code)
	}
}

func TestUpdateMissingPost(t *testing.T) {
	r, _ := newTestServer(t, nil)
	w := doJSON(t, r, http.MethodPatch, "/api/calendar/posts/4242", gin.H{"status": "ready"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
}

func TestDisconnectKeepsRow(t *testing.T) {
	r, _ := newTestServer(t, nil)
	connectTwitter(t, r)

	w := doJSON(t, r, http.MethodDelete, "/api/social-accounts/Twitter", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("disconnect: %d", w.Code)
	}

	// The row survives but no longer counts as connected.
	w = doJSON(t, r, http.MethodGet, "/api/social-accounts/Twitter", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get after disconnect: %d", w.Code)
	}
	var acct types.SocialAccount
	if err := json.Unmarshal(w.Body.Bytes(), &acct); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if acct.Connected {
		t.Fatalf("still connected")
	}

	w = doJSON(t, r, http.MethodPost, "/api/calendar/posts", gin.H{
		"content":       "hi",
		"platform":      "Twitter",
		"scheduledTime": "2025-01-01T00:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create after disconnect: got %d, want 400", w.Code)
	}
}

func TestRefreshToken(t *testing.T) {
	r, _ := newTestServer(t, nil)

	// No account at all.
	w := doJSON(t, r, http.MethodPost, "/api/social-accounts/Twitter/refresh", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("refresh without account: %d", w.Code)
	}

	// Connected but no refresh token.
	connectTwitter(t, r)
	w = doJSON(t, r, http.MethodPost, "/api/social-accounts/Twitter/refresh", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("refresh without refresh token: %d", w.Code)
	}

	// With a refresh token.
	w = doJSON(t, r, http.MethodPost, "/api/social-accounts/Twitter", gin.H{
		"username":     "alice",
		"accessToken":  "tok",
		"refreshToken": "ref",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reconnect: %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/social-accounts/Twitter/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken == "" || resp.AccessToken == "tok" {
		t.Fatalf("token not rotated: %q", resp.AccessToken)
	}
}

func TestGenerate(t *testing.T) {
	r, _ := newTestServer(t, nil)
	w := doJSON(t, r, http.MethodPost, "/api/calendar/generate", gin.H{"prompt": "announce the launch"})
	if w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Content != "generated copy" {
		t.Fatalf("content = %q", resp.Content)
	}
}

func TestGenerateAPIKeyMissing(t *testing.T) {
	r, _ := newTestServer(t, ai.NewService(ai.FactoryConfig{Provider: "openai"}))
	w := doJSON(t, r, http.MethodPost, "/api/calendar/generate", gin.H{"prompt": "hi"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", w.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "api_key_missing" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestGenerateRateLimited(t *testing.T) {
	r, _ := newTestServer(t, ai.NewServiceWithProvider(fakeProvider{err: ai.ErrRateLimited}))
	w := doJSON(t, r, http.MethodPost, "/api/calendar/generate", gin.H{"prompt": "hi"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", w.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "rate_limit_exceeded" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestAIRouteRateLimiter(t *testing.T) {
	st, err := store.Open(store.Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := testConfig()
	cfg.AIRateLimit = 2
	r := New(cfg, st, nil, ai.NewServiceWithProvider(fakeProvider{reply: "ok"}), notify.Nop{})

	for i := 0; i < 2; i++ {
		if w := doJSON(t, r, http.MethodPost, "/api/calendar/generate", gin.H{"prompt": "hi"}); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	w := doJSON(t, r, http.MethodPost, "/api/calendar/generate", gin.H{"prompt": "hi"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: got %d, want 429", w.Code)
	}
}

func TestSlackStatus(t *testing.T) {
	r, _ := newTestServer(t, nil)
	w := doJSON(t, r, http.MethodGet, "/api/slack/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var resp struct {
		Connected         bool `json:"connected"`
		ChannelConfigured bool `json:"channelConfigured"`
		TokenConfigured   bool `json:"tokenConfigured"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Connected || resp.ChannelConfigured || resp.TokenConfigured {
		t.Fatalf("unconfigured slack reported as configured: %+v", resp)
	}
}

func TestSessionScopesData(t *testing.T) {
	r, _ := newTestServer(t, nil)

	w := doJSON(t, r, http.MethodPost, "/api/session", gin.H{"username": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("session: %d", w.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	connectTwitter(t, r) // connects for demo-user, not alice

	// alice has no connected account, so her create fails.
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(gin.H{
		"content":       "hi",
		"platform":      "Twitter",
		"scheduledTime": "2025-01-01T00:00:00Z",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/calendar/posts", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}

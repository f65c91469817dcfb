// Minimal end-to-end integration check for a running API server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

var (
	baseURL = getenv("API_URL", "http://localhost:3001")
	token   string
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	health()
	token = openSession("smoketest-user")

	connectAccount("Twitter")
	id := createPost("Twitter", "Integration check post")
	listPosts(id)
	updatePost(id, "published")
	deletePost(id)
	disconnectAccount("Twitter")
	slackStatus()

	fmt.Println("all endpoints passed")
}

func health() {
	doJSON("GET", "/health", nil, nil, http.StatusOK)
}

func openSession(username string) string {
	var resp struct{ Token string }
	doJSON("POST", "/api/session", map[string]any{"username": username}, &resp, http.StatusOK)
	if resp.Token == "" {
		log.Fatal("session: empty token")
	}
	return resp.Token
}

func connectAccount(platform string) {
	doJSON("POST", "/api/social-accounts/"+platform, map[string]any{
		"username":    "smoketest",
		"accessToken": "tok_smoketest",
	}, nil, http.StatusOK)
}

func disconnectAccount(platform string) {
	doJSON("DELETE", "/api/social-accounts/"+platform, nil, nil, http.StatusOK)
}

func createPost(platform, content string) uint64 {
	var resp struct {
		ID uint64 `json:"id"`
	}
	doJSON("POST", "/api/calendar/posts", map[string]any{
		"platform":      platform,
		"content":       content,
		"scheduledTime": "2030-01-01T09:00:00Z",
		"status":        "scheduled",
	}, &resp, http.StatusCreated)
	if resp.ID == 0 {
		log.Fatal("create post: no id")
	}
	return resp.ID
}

func listPosts(wantID uint64) {
	var posts []struct {
		ID uint64 `json:"id"`
	}
	doJSON("GET", "/api/calendar", nil, &posts, http.StatusOK)
	for _, p := range posts {
		if p.ID == wantID {
			return
		}
	}
	log.Fatalf("list: post %d missing", wantID)
}

func updatePost(id uint64, status string) {
	doJSON("PATCH", fmt.Sprintf("/api/calendar/posts/%d", id),
		map[string]any{"status": status}, nil, http.StatusOK)
}

func deletePost(id uint64) {
	doJSON("DELETE", fmt.Sprintf("/api/calendar/posts/%d", id), nil, nil, http.StatusOK)
	doJSON("DELETE", fmt.Sprintf("/api/calendar/posts/%d", id), nil, nil, http.StatusNotFound)
}

func slackStatus() {
	var resp struct {
		Connected bool `json:"connected"`
	}
	doJSON("GET", "/api/slack/status", nil, &resp, http.StatusOK)
}

func doJSON(method, path string, body, out any, wantStatus int) {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			log.Fatalf("%s %s: marshal: %v", method, path, err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, baseURL+path, buf)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		log.Fatalf("%s %s: status %d (want %d): %s", method, path, resp.StatusCode, wantStatus, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			log.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	fmt.Printf("ok %s %s\n", method, path)
}

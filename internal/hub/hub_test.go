package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgettracker/internal/auth"
)

// withUser stands in for the auth middleware
func withUser(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := r.Header.Get("X-Test-User"); user != "" {
			r = r.WithContext(auth.WithUserID(r.Context(), user))
		}
		h.ServeHTTP(w, r)
	})
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := New(nil)
	go h.Run(ctx)

	srv := httptest.NewServer(withUser(h))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return h, srv
}

// connect opens a stream as user and returns a channel of data lines
func connect(t *testing.T, srv *httptest.Server, user string) <-chan string {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("X-Test-User", user)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	lines := make(chan string, 16)
	go func() {
		defer resp.Body.Close()
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
				lines <- strings.TrimPrefix(line, "data: ")
			}
		}
	}()
	return lines
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBroadcastReachesOnlyOwner(t *testing.T) {
	h, srv := startHub(t)
	u1 := connect(t, srv, "u1")
	u2 := connect(t, srv, "u2")
	waitForClients(t, h, 2)

	h.Broadcast("u1", map[string]string{"type": "item_created"})

	select {
	case line := <-u1:
		if line != `{"type":"item_created"}` {
			t.Fatalf("unexpected data: %s", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("u1 did not receive the event")
	}

	select {
	case line := <-u2:
		t.Fatalf("u2 received another user's event: %s", line)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnauthenticatedStreamIsRejected(t *testing.T) {
	_, srv := startHub(t)
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New(nil)
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancel")
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	h.ServeHTTP(rec, req.WithContext(auth.WithUserID(req.Context(), "u1")))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type collector struct {
	mu    sync.Mutex
	names []string
}

func (c *collector) add(name string) {
	c.mu.Lock()
	c.names = append(c.names, name)
	c.mu.Unlock()
}

func (c *collector) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, got := range c.names {
		if got == name {
			n++
		}
	}
	return n
}

func startWatch(t *testing.T, dir string, c *collector) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, dir, logger, c.add)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_ExternalEditReported(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	startWatch(t, dir, c)

	_ = os.WriteFile(filepath.Join(dir, "projects.json"), []byte("[]\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return c.count("projects") > 0
	}, "expected projects change")
}

func TestWatcher_SameContentIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skills.json")
	_ = os.WriteFile(path, []byte(`{"skills": []}`), 0o644)

	c := &collector{}
	startWatch(t, dir, c)

	_ = os.WriteFile(path, []byte(`{"skills": []}`), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, ".folio-tmp-1"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)

	if n := c.count("skills"); n != 0 {
		t.Errorf("unchanged rewrite reported %d times", n)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.names) != 0 {
		t.Errorf("unexpected events %v", c.names)
	}
}

func TestWatcher_RemoveReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.json")
	_ = os.WriteFile(path, []byte(`{}`), 0o644)

	c := &collector{}
	startWatch(t, dir, c)

	_ = os.Remove(path)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return c.count("stats") > 0
	}, "expected stats removal")
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/data/projects.json", "projects", true},
		{"/data/message-archive-2024.json", "message-archive-2024", true},
		{"/data/.folio-tmp-123", "", false},
		{"/data/readme.md", "", false},
	}
	for _, tt := range tests {
		got, ok := documentName(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("documentName(%q) = %q, %v", tt.path, got, ok)
		}
	}
}

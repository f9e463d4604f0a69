// internal/visitors/visitors.go
package visitors

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Counter is the process-wide visitor counter, persisted to a small JSON
// file so the number survives restarts. Every new connection counts; no
// dedup by IP or cookie.
type Counter struct {
	mu    sync.Mutex
	count int
	path  string
}

type fileFormat struct {
	Count int `json:"count"`
}

// Load reads the counter file at path, starting from zero when the file is
// missing or unreadable.
func Load(path string) *Counter {
	c := &Counter{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return c
	}
	c.count = f.Count
	return c
}

// Increment bumps the counter, persists it, and returns the new value. A
// persistence failure is returned alongside the incremented value; the
// in-memory count still advances.
func (c *Counter) Increment() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++

	data, err := json.Marshal(fileFormat{Count: c.count})
	if err != nil {
		return c.count, fmt.Errorf("failed to marshal visitor count: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return c.count, fmt.Errorf("failed to save visitor count: %w", err)
	}
	return c.count, nil
}

// Count returns the current value.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

package storage

import (
	"strconv"
	"sync"
	"time"
)

var (
	idMu   sync.Mutex
	lastID int64
)

// NewID returns a record id derived from the current Unix time in
// milliseconds. Ids are strictly increasing within the process.
func NewID() string {
	return newIDAt(time.Now())
}

func newIDAt(now time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()

	n := now.UnixMilli()
	if n <= lastID {
		n = lastID + 1
	}
	lastID = n
	return strconv.FormatInt(n, 10)
}

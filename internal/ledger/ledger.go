package ledger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one finalized record as persisted: the caller's fields plus the
// assigned "id" and "created_at".
type Entry map[string]any

// Log persists a ledger as a single JSON array with whole-file
// read-modify-write semantics. Appends are not crash-atomic and the file
// supports at most one concurrent writer; callers own that discipline.
type Log struct {
	mu   sync.Mutex
	path string
}

// Open prepares a ledger at path, creating the parent directory if needed.
// The file itself is created lazily on first load or append.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ledger dir: %w", err)
	}
	return &Log{path: path}, nil
}

// Path returns the backing file path.
func (l *Log) Path() string { return l.path }

// Load reads every entry in append order. A missing, zero-length, or
// malformed file yields an empty ledger AND rewrites the file as an empty
// well-formed array. That self-heal discards whatever was there; it is the
// documented data-loss tradeoff of this store, so it is logged loudly.
func (l *Log) Load() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

func (l *Log) loadLocked() ([]Entry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if os.IsNotExist(err) || len(data) == 0 {
		if werr := l.writeLocked([]Entry{}); werr != nil {
			return nil, werr
		}
		return []Entry{}, nil
	}
	var entries []Entry
	if uerr := json.Unmarshal(data, &entries); uerr != nil {
		log.Printf("ledger %s corrupted, resetting to empty (%d bytes lost): %v", l.path, len(data), uerr)
		metricResets.Inc()
		if werr := l.writeLocked([]Entry{}); werr != nil {
			return nil, werr
		}
		return []Entry{}, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Append reads the full ledger, appends one entry, and writes the whole file
// back. The assigned id is returned. Fields named "id" or "created_at" in
// the input are overwritten.
func (l *Log) Append(fields map[string]any) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.loadLocked()
	if err != nil {
		metricWriteFailures.Inc()
		return "", err
	}

	id := uuid.New().String()
	entry := make(Entry, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["id"] = id
	entry["created_at"] = time.Now().UTC().Format(time.RFC3339)

	entries = append(entries, entry)
	if err := l.writeLocked(entries); err != nil {
		metricWriteFailures.Inc()
		return "", err
	}
	metricAppends.Inc()
	return id, nil
}

// UpdateByID applies mutate to the entry with the assigned id and rewrites
// the file. Returns false when no entry has that id. The entry's "id" and
// "created_at" fields are preserved across the mutation.
func (l *Log) UpdateByID(id string, mutate func(Entry) Entry) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.loadLocked()
	if err != nil {
		return false, err
	}
	for i, e := range entries {
		if e["id"] != id {
			continue
		}
		updated := mutate(e)
		updated["id"] = id
		updated["created_at"] = e["created_at"]
		entries[i] = updated
		if err := l.writeLocked(entries); err != nil {
			metricWriteFailures.Inc()
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Get returns the entry with the assigned id, or ok=false.
func (l *Log) Get(id string) (Entry, bool, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, false, err
	}
	for _, e := range entries {
		if e["id"] == id {
			return e, true, nil
		}
	}
	return nil, false, nil
}

// Tail returns up to n most recent entries, oldest first.
func (l *Log) Tail(n int) ([]Entry, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}
	if n < len(entries) {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func (l *Log) writeLocked(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

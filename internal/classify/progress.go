// Package classify runs the full-archive classification pass with the
// selected model: a bounded worker pool, terminal per-tweet outcomes and
// an append-only progress log that makes interrupted runs resumable.
package classify

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tweetlab/internal/llm"
	"tweetlab/internal/logging"
)

// Terminal per-tweet outcomes.
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

// Record is one progress log entry: the terminal outcome for one tweet.
type Record struct {
	TweetID  string      `json:"tweet_id"`
	Status   string      `json:"status"`
	Labels   *llm.Labels `json:"labels,omitempty"`
	Model    string      `json:"model"`
	Attempts int         `json:"attempts,omitempty"`
	Error    string      `json:"error,omitempty"`
	At       time.Time   `json:"at"`
}

// ProgressLog is an append-only JSON lines file keyed by tweet id. Each
// append is a single write so a crash leaves at most one truncated
// trailing line, which replay tolerates.
type ProgressLog struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// OpenProgress opens (or creates) the progress log at path and replays
// it, returning the latest record per tweet id. On replay a later record
// for the same id wins, so a tweet that failed in one run and succeeded
// in the next counts as done.
func OpenProgress(path string) (*ProgressLog, map[string]Record, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create progress directory: %w", err)
	}

	replayed, err := replay(path)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open progress log: %w", err)
	}
	if len(replayed) > 0 {
		logging.Classify("progress log %s replayed: %d tweets have terminal records", path, len(replayed))
	}
	return &ProgressLog{file: file, path: path}, replayed, nil
}

func replay(path string) (map[string]Record, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress log: %w", err)
	}
	defer f.Close()

	records := make(map[string]Record)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			// A torn final line from an interrupted run is expected;
			// the tweet it covered simply gets reprocessed.
			logging.ClassifyWarn("progress log %s line %d unparseable, ignoring: %v", path, line, err)
			continue
		}
		if rec.TweetID == "" {
			continue
		}
		records[rec.TweetID] = rec
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan progress log: %w", err)
	}
	return records, nil
}

// Append writes one terminal record. Safe for concurrent use.
func (p *ProgressLog) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal progress record: %w", err)
	}
	data = append(data, '\n')

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.file.Write(data); err != nil {
		return fmt.Errorf("failed to append progress record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (p *ProgressLog) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file.Close()
}

// Path returns the log file location.
func (p *ProgressLog) Path() string {
	return p.path
}

// DoneIDs filters replayed records down to the ids that are already
// classified. Failed records are excluded so a rerun retries them.
func DoneIDs(records map[string]Record) map[string]bool {
	done := make(map[string]bool, len(records))
	for id, rec := range records {
		if rec.Status == StatusDone {
			done[id] = true
		}
	}
	return done
}

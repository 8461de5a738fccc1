// Package archive reads Twitter archive exports into flat tabular rows.
// Export shapes vary wildly between archive vintages: plain JSON arrays,
// JSON Lines, records wrapped one-per-line in {"tweet": {...}}, and whole
// archives under a top-level {"tweets": [...]} key. The loader tolerates
// all of them and fails only when no tweet records can be found at all.
package archive

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"tweetlab/internal/logging"
)

// ParseError reports an archive that contained no recognizable tweet
// records. It is the only fatal loader error; individual malformed
// records are skipped.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("archive %s: %s", e.Path, e.Reason)
}

// Load reads the archive at path and returns one flattened row per tweet
// record. The file may be JSON or JSON Lines.
func Load(path string) ([]Row, error) {
	timer := logging.StartTimer(logging.CategoryArchive, "Load")
	defer timer.StopWithInfo()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Path: path, Reason: "file is empty"}
	}

	// JSON Lines first: every non-empty line decodes on its own. A
	// single-object file also "decodes" as one line, so require at least
	// two lines before trusting the JSONL interpretation.
	if rows, ok := tryJSONLines(data); ok {
		logging.Archive("loaded %d tweet rows from %s (json-lines)", len(rows), path)
		return rows, nil
	}

	rows, err := parseWholeJSON(data)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: err.Error()}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Path: path, Reason: "no tweet records found"}
	}
	logging.Archive("loaded %d tweet rows from %s", len(rows), path)
	return rows, nil
}

// tryJSONLines attempts a line-per-record parse. Returns ok=false when
// the file is not JSONL shaped.
func tryJSONLines(data []byte) ([]Row, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rows []Row
	lines := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines++
		var obj map[string]interface{}
		if err := json.Unmarshal(line, &obj); err != nil {
			return nil, false
		}
		rows = append(rows, normalizeRecord(obj))
	}
	if err := scanner.Err(); err != nil {
		return nil, false
	}
	if lines < 2 {
		return nil, false
	}
	return rows, true
}

// parseWholeJSON handles single-document archives: a bare array of
// records, an object with a "tweets" array, or a single record object.
func parseWholeJSON(data []byte) ([]Row, error) {
	var top interface{}
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("not valid JSON: %v", err)
	}

	switch t := top.(type) {
	case []interface{}:
		return recordsFromList(t), nil
	case map[string]interface{}:
		if tweets, ok := t["tweets"].([]interface{}); ok {
			return recordsFromList(tweets), nil
		}
		// A lone record object.
		return []Row{normalizeRecord(t)}, nil
	default:
		return nil, fmt.Errorf("unsupported top-level JSON type %T", top)
	}
}

func recordsFromList(items []interface{}) []Row {
	rows := make([]Row, 0, len(items))
	skipped := 0
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, normalizeRecord(obj))
	}
	if skipped > 0 {
		logging.ArchiveWarn("skipped %d non-object entries in tweet list", skipped)
	}
	return rows
}

// normalizeRecord unwraps the single-key {"tweet": {...}} envelope some
// exports use, then flattens.
func normalizeRecord(obj map[string]interface{}) Row {
	if inner, ok := obj["tweet"].(map[string]interface{}); ok {
		return Flatten(inner)
	}
	return Flatten(obj)
}

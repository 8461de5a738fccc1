package classify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetlab/internal/llm"
)

func TestProgressAppendAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.jsonl")

	log, replayed, err := OpenProgress(path)
	require.NoError(t, err)
	assert.Empty(t, replayed)

	labels := &llm.Labels{HumorType: "none", TopicCategory: "tech", CritiqueType: "none"}
	require.NoError(t, log.Append(Record{TweetID: "1", Status: StatusDone, Labels: labels, Model: "m", At: time.Now().UTC()}))
	require.NoError(t, log.Append(Record{TweetID: "2", Status: StatusFailed, Error: "bad key", Model: "m", At: time.Now().UTC()}))
	require.NoError(t, log.Close())

	_, replayed, err = OpenProgress(path)
	require.NoError(t, err)
	require.Len(t, replayed, 2)
	assert.Equal(t, StatusDone, replayed["1"].Status)
	assert.Equal(t, "tech", replayed["1"].Labels.TopicCategory)
	assert.Equal(t, StatusFailed, replayed["2"].Status)
	assert.Equal(t, "bad key", replayed["2"].Error)
}

func TestProgressLaterRecordWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.jsonl")
	log, _, err := OpenProgress(path)
	require.NoError(t, err)

	require.NoError(t, log.Append(Record{TweetID: "1", Status: StatusFailed, Error: "timeout", At: time.Now().UTC()}))
	require.NoError(t, log.Append(Record{TweetID: "1", Status: StatusDone, Labels: &llm.Labels{}, At: time.Now().UTC()}))
	require.NoError(t, log.Close())

	_, replayed, err := OpenProgress(path)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, replayed["1"].Status, "a retried success supersedes the old failure")
}

func TestProgressToleratesTornTrailingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.jsonl")
	content := `{"tweet_id":"1","status":"done","model":"m","at":"2025-01-01T00:00:00Z"}
{"tweet_id":"2","status":"do`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, replayed, err := OpenProgress(path)
	require.NoError(t, err)
	require.Len(t, replayed, 1)
	assert.Contains(t, replayed, "1")
}

func TestProgressSkipsRecordsWithoutID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.jsonl")
	content := `{"status":"done"}
{"tweet_id":"9","status":"done","at":"2025-01-01T00:00:00Z"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, replayed, err := OpenProgress(path)
	require.NoError(t, err)
	require.Len(t, replayed, 1)
}

func TestDoneIDs(t *testing.T) {
	records := map[string]Record{
		"a": {TweetID: "a", Status: StatusDone},
		"b": {TweetID: "b", Status: StatusFailed},
	}
	done := DoneIDs(records)
	assert.True(t, done["a"])
	assert.False(t, done["b"], "failed tweets are retried on resume")
}

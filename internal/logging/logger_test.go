package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLoggingIsNoOp(t *testing.T) {
	require.NoError(t, Initialize(Config{Enabled: false}))
	defer CloseAll()

	// Must not panic or create files.
	Archive("ignored %d", 1)
	Get(CategoryEval).Error("also ignored")
	assert.False(t, Enabled())
}

func TestEnabledLoggingWritesCategoryFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Config{Enabled: true, Level: "debug", Dir: dir}))
	defer CloseAll()

	Classify("processed %d tweets", 42)
	APIDebug("request sent")
	CloseAll()

	date := time.Now().Format("2006-01-02")
	classifyLog := filepath.Join(dir, date+"_classify.log")
	data, err := os.ReadFile(classifyLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "processed 42 tweets")
	assert.Contains(t, string(data), "[INFO]")

	apiLog := filepath.Join(dir, date+"_api.log")
	data, err = os.ReadFile(apiLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "request sent")
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Config{Enabled: true, Level: "warn", Dir: dir}))
	defer CloseAll()

	Features("suppressed info")
	FeaturesWarn("kept warning")
	CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, date+"_features.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "suppressed info")
	assert.Contains(t, string(data), "kept warning")
}

func TestJSONFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Config{Enabled: true, Level: "info", JSONFormat: true, Dir: dir}))
	defer CloseAll()

	Store("rows=%d", 7)
	CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, date+"_store.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cat":"store"`)
	assert.Contains(t, string(data), `"msg":"rows=7"`)
}

func TestEnabledWithoutDirFails(t *testing.T) {
	err := Initialize(Config{Enabled: true})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "directory"))
}

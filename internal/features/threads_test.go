package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h int) time.Time {
	return time.Date(2023, 6, 1, h, 0, 0, 0, time.UTC)
}

func TestReconstructThreadsChain(t *testing.T) {
	tweets := []Tweet{
		{ID: "a", PostDatetime: at(9)},
		{ID: "b", InReplyToStatusID: "a", PostDatetime: at(10)},
		{ID: "c", InReplyToStatusID: "b", PostDatetime: at(11)},
		{ID: "x", PostDatetime: at(12)},
	}
	ReconstructThreads(tweets)

	assert.Equal(t, "a", tweets[0].ThreadID)
	assert.Equal(t, "a", tweets[1].ThreadID)
	assert.Equal(t, "a", tweets[2].ThreadID)
	assert.Equal(t, "x", tweets[3].ThreadID)

	assert.Equal(t, 0, tweets[0].ThreadStepIndex)
	assert.Equal(t, 1, tweets[1].ThreadStepIndex)
	assert.Equal(t, 2, tweets[2].ThreadStepIndex)
	assert.True(t, tweets[0].IsThreadStarter)
	assert.False(t, tweets[1].IsThreadStarter)
	assert.True(t, tweets[3].IsThreadStarter)
}

func TestReconstructThreadsMissingRoot(t *testing.T) {
	// The parent "gone" was deleted from the archive; the chain roots at
	// the last known ancestor.
	tweets := []Tweet{
		{ID: "b", InReplyToStatusID: "gone", PostDatetime: at(10)},
		{ID: "c", InReplyToStatusID: "b", PostDatetime: at(11)},
	}
	ReconstructThreads(tweets)
	assert.Equal(t, "gone", tweets[0].ThreadID)
	assert.Equal(t, "gone", tweets[1].ThreadID)
}

func TestReconstructThreadsCycleTerminates(t *testing.T) {
	tweets := []Tweet{
		{ID: "a", InReplyToStatusID: "b", PostDatetime: at(9)},
		{ID: "b", InReplyToStatusID: "a", PostDatetime: at(10)},
	}
	ReconstructThreads(tweets)
	// Both land in the same thread and the walk does not hang.
	assert.Equal(t, tweets[0].ThreadID, tweets[1].ThreadID)
}

func TestReconstructThreadsChronologicalOrder(t *testing.T) {
	// Archive order is not chronological; steps must be.
	tweets := []Tweet{
		{ID: "late", InReplyToStatusID: "root", PostDatetime: at(15)},
		{ID: "root", PostDatetime: at(9)},
		{ID: "middle", InReplyToStatusID: "root", PostDatetime: at(12)},
	}
	ReconstructThreads(tweets)
	assert.Equal(t, 2, tweets[0].ThreadStepIndex)
	assert.Equal(t, 0, tweets[1].ThreadStepIndex)
	assert.Equal(t, 1, tweets[2].ThreadStepIndex)
	assert.True(t, tweets[1].IsThreadStarter)
}

package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoreSampleFilter(t *testing.T) {
	set := &EngineeredSet{
		WinsorCap:  42.5,
		Percentile: 0.95,
		Tweets: []Tweet{
			{ID: "keep-plain", ReplyType: ReplyNone},
			{ID: "keep-reply-other", ReplyType: ReplyOther},
			{ID: "drop-retweet", ReplyType: ReplyNone, IsRetweet: true},
			{ID: "drop-quote", ReplyType: ReplyNone, IsQuoteTweet: true},
			{ID: "drop-self-reply", ReplyType: ReplySelf},
		},
	}

	core := CoreSample(set)
	ids := make([]string, len(core.Tweets))
	for i, tw := range core.Tweets {
		ids[i] = tw.ID
	}
	assert.Equal(t, []string{"keep-plain", "keep-reply-other"}, ids)
	assert.Equal(t, 42.5, core.WinsorCap, "cap is inherited, not recomputed")
	assert.Equal(t, 0.95, core.Percentile)
}

func TestIncludeInCoreSample(t *testing.T) {
	assert.True(t, IncludeInCoreSample(Tweet{ReplyType: ReplyNone}))
	assert.True(t, IncludeInCoreSample(Tweet{ReplyType: ReplyOther}))
	assert.False(t, IncludeInCoreSample(Tweet{ReplyType: ReplySelf}))
	assert.False(t, IncludeInCoreSample(Tweet{ReplyType: ReplyNone, IsRetweet: true}))
	assert.False(t, IncludeInCoreSample(Tweet{ReplyType: ReplyOther, IsQuoteTweet: true}))
}

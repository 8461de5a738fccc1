// Package features derives the analytical columns used by the engagement
// models from raw archive rows: coerced engagement counters, content
// flags, reply classification, time buckets, account tiers, winsorized
// engagement and thread structure.
package features

import "time"

// Reply classification values.
const (
	ReplyNone  = "none"
	ReplySelf  = "reply_self"
	ReplyOther = "reply_other"
)

// Tweet is one engineered tweet row. Raw fields survive alongside the
// derived ones; engineering never drops source columns it read.
type Tweet struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	PostDatetime time.Time `json:"post_datetime"`

	// Engagement counters, coercion-safe (missing or malformed -> 0).
	Likes           int `json:"likes"`
	Retweets        int `json:"retweets"`
	Replies         int `json:"replies"`
	Bookmarks       int `json:"bookmarks"`
	TotalEngagement int `json:"total_engagement"`

	// WinsorizedEngagement is TotalEngagement clipped at the dataset
	// percentile cap. Depends on the whole engineered set, not the row.
	WinsorizedEngagement float64 `json:"winsorized_engagement"`

	// Content flags.
	IsRetweet       bool `json:"is_retweet"`
	IsQuoteTweet    bool `json:"is_quote_tweet"`
	HasLink         bool `json:"has_link"`
	HasMedia        bool `json:"has_media"`
	HasQuestionMark bool `json:"has_question_mark"`
	NumHashtags     int  `json:"num_hashtags"`
	NumMentions     int  `json:"num_mentions"`
	TextLength      int  `json:"text_length_chars"`

	// Reply linkage.
	ReplyType         string `json:"reply_type"`
	InReplyToStatusID string `json:"in_reply_to_status_id,omitempty"`
	InReplyToUserID   string `json:"in_reply_to_user_id,omitempty"`

	// Time buckets.
	Weekday   string `json:"weekday"`
	HourOfDay int    `json:"hour_of_day"`
	Month     string `json:"month"`

	// AccountTier is the named tier containing PostDatetime.
	AccountTier string `json:"account_tier"`

	// Thread structure.
	ThreadID        string `json:"thread_id"`
	ThreadStepIndex int    `json:"thread_step_index"`
	IsThreadStarter bool   `json:"is_thread_starter"`
}

// EngineeredSet is the full engineered table plus dataset-level derived
// values. WinsorCap is computed once over the full set; filtered subsets
// inherit it rather than recomputing.
type EngineeredSet struct {
	Tweets []Tweet

	// WinsorCap is the engagement value at the configured percentile.
	WinsorCap float64

	// Percentile the cap was computed at.
	Percentile float64

	// OwnerUserID actually used for reply classification (configured or
	// inferred).
	OwnerUserID string

	// CoercedRows counts rows where at least one malformed field was
	// replaced with its default.
	CoercedRows int
}

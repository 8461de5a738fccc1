package features

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tweetlab/internal/archive"
	"tweetlab/internal/logging"
)

// Config parameterizes feature engineering. Tier boundaries and the
// winsorization percentile are dataset-level constants supplied by the
// caller, never hardcoded here.
type Config struct {
	// OwnerUserID identifies the archive owner for reply_self vs
	// reply_other classification. When empty it is inferred from the
	// rows.
	OwnerUserID     string
	OwnerScreenName string

	WinsorizePercentile float64

	Tiers []Tier
}

// created_at formats seen across archive vintages.
var timeLayouts = []string{
	"Mon Jan 02 15:04:05 -0700 2006", // classic archive export
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Engineer derives the analytical columns for every row. A malformed row
// never aborts the batch: bad fields are coerced to defaults and counted
// in the returned set's CoercedRows. The only error is a dataset with no
// usable timestamps at all, since every downstream analysis is temporal.
func Engineer(rows []archive.Row, cfg Config) (*EngineeredSet, error) {
	timer := logging.StartTimer(logging.CategoryFeatures, "Engineer")
	defer timer.StopWithInfo()

	if len(cfg.Tiers) == 0 {
		return nil, fmt.Errorf("no account tiers configured")
	}

	owner := cfg.OwnerUserID
	if owner == "" {
		owner = inferOwnerID(rows, cfg.OwnerScreenName)
		if owner == "" {
			logging.FeaturesWarn("could not infer owner user id; reply_self will never be assigned")
		} else {
			logging.Features("inferred owner user id %s", owner)
		}
	}

	set := &EngineeredSet{
		Percentile:  cfg.WinsorizePercentile,
		OwnerUserID: owner,
	}
	parsedAny := false

	for _, row := range rows {
		t, coerced := engineerRow(row, owner, cfg.Tiers)
		if !t.PostDatetime.IsZero() {
			parsedAny = true
		}
		if coerced {
			set.CoercedRows++
		}
		set.Tweets = append(set.Tweets, t)
	}

	if len(set.Tweets) > 0 && !parsedAny {
		return nil, fmt.Errorf("no parseable timestamps in %d rows", len(set.Tweets))
	}

	set.WinsorCap = WinsorCap(set.Tweets, cfg.WinsorizePercentile)
	ApplyWinsorCap(set.Tweets, set.WinsorCap)
	ReconstructThreads(set.Tweets)

	logging.Features("engineered %d tweets (coerced=%d winsor_cap=%.2f)",
		len(set.Tweets), set.CoercedRows, set.WinsorCap)
	return set, nil
}

func engineerRow(row archive.Row, owner string, tiers []Tier) (Tweet, bool) {
	coerced := false

	text := row.Str("full_text", "text")
	t := Tweet{
		ID:         row.Str("id_str", "id"),
		Text:       text,
		TextLength: len([]rune(text)),
	}

	ts, ok := parseCreatedAt(row)
	if !ok && row.Has("created_at") {
		coerced = true
	}
	t.PostDatetime = ts

	// Engagement counters. Malformed strings coerce to zero.
	t.Likes = row.Int("favorite_count")
	t.Retweets = row.Int("retweet_count")
	t.Replies = row.Int("reply_count")
	t.Bookmarks = row.Int("bookmark_count")
	t.TotalEngagement = t.Likes + t.Retweets + t.Replies + t.Bookmarks
	if malformedCounter(row, "favorite_count") || malformedCounter(row, "retweet_count") {
		coerced = true
	}

	// Content flags.
	t.IsRetweet = detectRetweet(row, text)
	t.IsQuoteTweet = detectQuote(row)
	t.HasLink = strings.Contains(text, "https://t.co/")
	t.HasMedia = len(row.List("extended_entities.media", "entities.media")) > 0
	t.HasQuestionMark = strings.Contains(text, "?")
	t.NumHashtags = len(row.List("entities.hashtags"))
	t.NumMentions = len(row.List("entities.user_mentions"))

	// Reply linkage.
	t.InReplyToStatusID = row.Str("in_reply_to_status_id_str", "in_reply_to_status_id")
	t.InReplyToUserID = row.Str("in_reply_to_user_id_str", "in_reply_to_user_id")
	switch {
	case t.InReplyToUserID == "":
		t.ReplyType = ReplyNone
	case owner != "" && t.InReplyToUserID == owner:
		t.ReplyType = ReplySelf
	default:
		t.ReplyType = ReplyOther
	}

	// Time buckets and tier.
	if !ts.IsZero() {
		t.Weekday = ts.Weekday().String()
		t.HourOfDay = ts.Hour()
		t.Month = ts.Format("2006-01")
	}
	t.AccountTier = AssignTier(ts, tiers)

	return t, coerced
}

func parseCreatedAt(row archive.Row) (time.Time, bool) {
	raw := strings.TrimSpace(row.Str("created_at", "time", "date"))
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// malformedCounter reports a counter field that is present but does not
// parse as a number.
func malformedCounter(row archive.Row, path string) bool {
	v, ok := row[path]
	if !ok || v == nil {
		return false
	}
	s, isStr := v.(string)
	if !isStr {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err != nil
}

func detectRetweet(row archive.Row, text string) bool {
	if row.Has("retweeted") && row.Bool("retweeted") {
		return true
	}
	if row.HasPrefix("retweeted_status") {
		return true
	}
	return strings.HasPrefix(text, "RT @")
}

func detectQuote(row archive.Row) bool {
	if row.Has("is_quote_status") && row.Bool("is_quote_status") {
		return true
	}
	if row.Str("quoted_status_id_str", "quoted_status_id") != "" {
		return true
	}
	// Quote tweets sometimes only show up as a status URL in entities.
	for _, u := range row.List("entities.urls") {
		obj, ok := u.(map[string]interface{})
		if !ok {
			continue
		}
		expanded, _ := obj["expanded_url"].(string)
		if strings.Contains(expanded, "twitter.com") && strings.Contains(expanded, "/status/") {
			return true
		}
	}
	return false
}

// inferOwnerID guesses the archive owner's user id. Preference order:
// screen-name match, most common author id, most common reply target.
func inferOwnerID(rows []archive.Row, screenName string) string {
	hint := strings.ToLower(strings.TrimSpace(screenName))
	if hint != "" {
		counts := make(map[string]int)
		for _, row := range rows {
			if strings.ToLower(row.Str("user.screen_name", "screen_name")) != hint {
				continue
			}
			if id := row.Str("user.id_str", "user.id"); id != "" {
				counts[id]++
			}
		}
		if id := mode(counts); id != "" {
			return id
		}
	}

	counts := make(map[string]int)
	for _, row := range rows {
		if id := row.Str("user.id_str", "user.id"); id != "" {
			counts[id]++
		}
	}
	if id := mode(counts); id != "" {
		return id
	}

	counts = make(map[string]int)
	for _, row := range rows {
		if id := row.Str("in_reply_to_user_id_str", "in_reply_to_user_id"); id != "" {
			counts[id]++
		}
	}
	return mode(counts)
}

func mode(counts map[string]int) string {
	best, bestN := "", 0
	for id, n := range counts {
		if n > bestN || (n == bestN && id < best) {
			best, bestN = id, n
		}
	}
	return best
}

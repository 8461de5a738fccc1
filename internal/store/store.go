// Package store persists the engineered dataset and classification
// results in a SQLite database so downstream analysis does not re-parse
// the raw archive.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tweetlab/internal/classify"
	"tweetlab/internal/features"
	"tweetlab/internal/llm"
	"tweetlab/internal/logging"
)

// Store manages the tweetlab dataset database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates or opens the dataset store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tweets (
		tweet_id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		post_datetime DATETIME NOT NULL,
		likes INTEGER NOT NULL,
		retweets INTEGER NOT NULL,
		replies INTEGER NOT NULL,
		bookmarks INTEGER NOT NULL,
		total_engagement INTEGER NOT NULL,
		winsorized_engagement REAL NOT NULL,
		is_retweet INTEGER NOT NULL,
		is_quote_tweet INTEGER NOT NULL,
		has_link INTEGER NOT NULL,
		has_media INTEGER NOT NULL,
		has_question_mark INTEGER NOT NULL,
		num_hashtags INTEGER NOT NULL,
		num_mentions INTEGER NOT NULL,
		text_length INTEGER NOT NULL,
		reply_type TEXT NOT NULL,
		in_reply_to_status_id TEXT,
		in_reply_to_user_id TEXT,
		weekday TEXT NOT NULL,
		hour_of_day INTEGER NOT NULL,
		month TEXT NOT NULL,
		account_tier TEXT NOT NULL,
		thread_id TEXT,
		thread_step_index INTEGER NOT NULL,
		is_thread_starter INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tweets_tier ON tweets(account_tier);
	CREATE INDEX IF NOT EXISTS idx_tweets_posted ON tweets(post_datetime);

	CREATE TABLE IF NOT EXISTS classifications (
		tweet_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		humor_type TEXT,
		topic_category TEXT,
		has_data_reference INTEGER,
		shows_vulnerability INTEGER,
		critique_type TEXT,
		model TEXT NOT NULL,
		error TEXT,
		classified_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_classifications_status ON classifications(status);

	CREATE TABLE IF NOT EXISTS dataset_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// ReplaceEngineered replaces the tweets table with the given engineered
// set and records its winsorization parameters in dataset_meta.
func (s *Store) ReplaceEngineered(set *features.EngineeredSet) error {
	timer := logging.StartTimer(logging.CategoryStore, "replace engineered tweets")

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tweets"); err != nil {
		return fmt.Errorf("failed to clear tweets: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tweets (
			tweet_id, text, post_datetime,
			likes, retweets, replies, bookmarks,
			total_engagement, winsorized_engagement,
			is_retweet, is_quote_tweet, has_link, has_media, has_question_mark,
			num_hashtags, num_mentions, text_length,
			reply_type, in_reply_to_status_id, in_reply_to_user_id,
			weekday, hour_of_day, month, account_tier,
			thread_id, thread_step_index, is_thread_starter
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range set.Tweets {
		_, err := stmt.Exec(
			t.ID, t.Text, t.PostDatetime.UTC(),
			t.Likes, t.Retweets, t.Replies, t.Bookmarks,
			t.TotalEngagement, t.WinsorizedEngagement,
			t.IsRetweet, t.IsQuoteTweet, t.HasLink, t.HasMedia, t.HasQuestionMark,
			t.NumHashtags, t.NumMentions, t.TextLength,
			t.ReplyType, t.InReplyToStatusID, t.InReplyToUserID,
			t.Weekday, t.HourOfDay, t.Month, t.AccountTier,
			t.ThreadID, t.ThreadStepIndex, t.IsThreadStarter,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tweet %s: %w", t.ID, err)
		}
	}

	if err := setMeta(tx, "winsor_cap", fmt.Sprintf("%g", set.WinsorCap)); err != nil {
		return err
	}
	if err := setMeta(tx, "winsor_percentile", fmt.Sprintf("%g", set.Percentile)); err != nil {
		return err
	}
	if err := setMeta(tx, "owner_user_id", set.OwnerUserID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.Store("stored %d engineered tweets (winsor cap %.2f)", len(set.Tweets), set.WinsorCap)
	timer.Stop()
	return nil
}

func setMeta(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`
		INSERT INTO dataset_meta (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

// Meta returns one dataset_meta value, or "" when absent.
func (s *Store) Meta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM dataset_meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read meta %s: %w", key, err)
	}
	return value, nil
}

// LoadEngineered reads all engineered tweets ordered by post time.
func (s *Store) LoadEngineered() ([]features.Tweet, error) {
	rows, err := s.db.Query(`
		SELECT tweet_id, text, post_datetime,
			likes, retweets, replies, bookmarks,
			total_engagement, winsorized_engagement,
			is_retweet, is_quote_tweet, has_link, has_media, has_question_mark,
			num_hashtags, num_mentions, text_length,
			reply_type, in_reply_to_status_id, in_reply_to_user_id,
			weekday, hour_of_day, month, account_tier,
			thread_id, thread_step_index, is_thread_starter
		FROM tweets ORDER BY post_datetime`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tweets: %w", err)
	}
	defer rows.Close()

	var tweets []features.Tweet
	for rows.Next() {
		var t features.Tweet
		err := rows.Scan(
			&t.ID, &t.Text, &t.PostDatetime,
			&t.Likes, &t.Retweets, &t.Replies, &t.Bookmarks,
			&t.TotalEngagement, &t.WinsorizedEngagement,
			&t.IsRetweet, &t.IsQuoteTweet, &t.HasLink, &t.HasMedia, &t.HasQuestionMark,
			&t.NumHashtags, &t.NumMentions, &t.TextLength,
			&t.ReplyType, &t.InReplyToStatusID, &t.InReplyToUserID,
			&t.Weekday, &t.HourOfDay, &t.Month, &t.AccountTier,
			&t.ThreadID, &t.ThreadStepIndex, &t.IsThreadStarter,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tweet: %w", err)
		}
		tweets = append(tweets, t)
	}
	return tweets, rows.Err()
}

// ReplaceClassifications replaces the classifications table with the
// terminal records of a run.
func (s *Store) ReplaceClassifications(records map[string]classify.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM classifications"); err != nil {
		return fmt.Errorf("failed to clear classifications: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO classifications (
			tweet_id, status,
			humor_type, topic_category, has_data_reference, shows_vulnerability, critique_type,
			model, error, classified_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range classify.SortedRecordIDs(records) {
		rec := records[id]
		var humor, topic, critique interface{}
		var hasData, vulnerable interface{}
		if rec.Labels != nil {
			humor = rec.Labels.HumorType
			topic = rec.Labels.TopicCategory
			critique = rec.Labels.CritiqueType
			hasData = rec.Labels.HasDataReference
			vulnerable = rec.Labels.ShowsVulnerability
		}
		if _, err := stmt.Exec(id, rec.Status, humor, topic, hasData, vulnerable, critique,
			rec.Model, rec.Error, rec.At.UTC()); err != nil {
			return fmt.Errorf("failed to insert classification for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.Store("stored %d classification records", len(records))
	return nil
}

// LoadClassifications reads all stored classification records.
func (s *Store) LoadClassifications() (map[string]classify.Record, error) {
	rows, err := s.db.Query(`
		SELECT tweet_id, status,
			humor_type, topic_category, has_data_reference, shows_vulnerability, critique_type,
			model, error, classified_at
		FROM classifications`)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifications: %w", err)
	}
	defer rows.Close()

	records := make(map[string]classify.Record)
	for rows.Next() {
		var rec classify.Record
		var humor, topic, critique sql.NullString
		var hasData, vulnerable sql.NullBool
		var errText sql.NullString
		err := rows.Scan(&rec.TweetID, &rec.Status,
			&humor, &topic, &hasData, &vulnerable, &critique,
			&rec.Model, &errText, &rec.At)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		rec.Error = errText.String
		if humor.Valid {
			rec.Labels = &llm.Labels{
				HumorType:          humor.String,
				TopicCategory:      topic.String,
				HasDataReference:   hasData.Bool,
				ShowsVulnerability: vulnerable.Bool,
				CritiqueType:       critique.String,
			}
		}
		records[rec.TweetID] = rec
	}
	return records, rows.Err()
}

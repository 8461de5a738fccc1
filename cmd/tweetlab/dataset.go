package main

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"tweetlab/internal/archive"
	"tweetlab/internal/features"
	"tweetlab/internal/store"
)

func configuredTiers() ([]features.Tier, error) {
	boundaries := make([][2]string, len(cfg.Features.Tiers))
	for i, t := range cfg.Features.Tiers {
		boundaries[i] = [2]string{t.Name, t.Start}
	}
	return features.ParseTiers(boundaries)
}

// engineerArchive parses the configured archive and derives all features.
func engineerArchive(archivePath string) (*features.EngineeredSet, error) {
	rows, err := archive.Load(archivePath)
	if err != nil {
		return nil, err
	}
	logger.Info("archive parsed", zap.String("path", archivePath), zap.Int("rows", len(rows)))

	tiers, err := configuredTiers()
	if err != nil {
		return nil, err
	}
	set, err := features.Engineer(rows, features.Config{
		OwnerUserID:         cfg.Features.OwnerUserID,
		OwnerScreenName:     cfg.Features.OwnerScreenName,
		WinsorizePercentile: cfg.Features.WinsorizePercentile,
		Tiers:               tiers,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("features engineered",
		zap.Int("tweets", len(set.Tweets)),
		zap.Int("coerced_rows", set.CoercedRows),
		zap.Float64("winsor_cap", set.WinsorCap))
	return set, nil
}

// loadDataset returns the engineered dataset, preferring the store and
// falling back to a fresh archive pass (which is then persisted). The
// returned store is open; the caller closes it.
func loadDataset() (*features.EngineeredSet, *store.Store, error) {
	st, err := store.NewStore(cfg.Store.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	tweets, err := st.LoadEngineered()
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	if len(tweets) > 0 {
		set := &features.EngineeredSet{Tweets: tweets}
		if v, err := st.Meta("winsor_cap"); err == nil && v != "" {
			set.WinsorCap, _ = strconv.ParseFloat(v, 64)
		}
		if v, err := st.Meta("winsor_percentile"); err == nil && v != "" {
			set.Percentile, _ = strconv.ParseFloat(v, 64)
		}
		if v, err := st.Meta("owner_user_id"); err == nil {
			set.OwnerUserID = v
		}
		logger.Info("dataset loaded from store",
			zap.String("db", st.Path()), zap.Int("tweets", len(tweets)))
		return set, st, nil
	}

	set, err := engineerArchive(cfg.Archive.Path)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	if err := st.ReplaceEngineered(set); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to persist engineered dataset: %w", err)
	}
	return set, st, nil
}

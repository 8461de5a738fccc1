package features

// CoreSample returns the modeling subset: no retweets, no quote tweets,
// and reply_type restricted to none or reply_other. The winsor cap on
// the returned set is inherited from the full set, not recomputed, so
// winsorized_engagement stays comparable across the filter boundary.
func CoreSample(set *EngineeredSet) *EngineeredSet {
	out := &EngineeredSet{
		WinsorCap:   set.WinsorCap,
		Percentile:  set.Percentile,
		OwnerUserID: set.OwnerUserID,
		CoercedRows: set.CoercedRows,
	}
	for _, t := range set.Tweets {
		if !IncludeInCoreSample(t) {
			continue
		}
		out.Tweets = append(out.Tweets, t)
	}
	return out
}

// IncludeInCoreSample is the predicate behind CoreSample, exposed so
// other consumers stay in sync with the exact filter.
func IncludeInCoreSample(t Tweet) bool {
	if t.IsRetweet || t.IsQuoteTweet {
		return false
	}
	return t.ReplyType == ReplyNone || t.ReplyType == ReplyOther
}

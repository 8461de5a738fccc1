package features

import (
	"fmt"
	"time"
)

// Tier is a named, date-bounded account interval. Start is inclusive;
// a tier extends until the next tier's start. The first tier has a zero
// Start and covers everything earlier.
type Tier struct {
	Name  string
	Start time.Time
}

// ParseTiers converts (name, YYYY-MM-DD) pairs into validated tiers.
// The first tier must have an empty start; later starts must be strictly
// increasing so tiers partition time.
func ParseTiers(boundaries [][2]string) ([]Tier, error) {
	if len(boundaries) == 0 {
		return nil, fmt.Errorf("at least one tier is required")
	}
	tiers := make([]Tier, 0, len(boundaries))
	for i, b := range boundaries {
		name, start := b[0], b[1]
		if name == "" {
			return nil, fmt.Errorf("tier %d has no name", i)
		}
		if i == 0 {
			if start != "" {
				return nil, fmt.Errorf("first tier %q must not have a start date", name)
			}
			tiers = append(tiers, Tier{Name: name})
			continue
		}
		ts, err := time.Parse("2006-01-02", start)
		if err != nil {
			return nil, fmt.Errorf("tier %q start %q: %w", name, start, err)
		}
		ts = ts.UTC()
		if i > 1 && !ts.After(tiers[i-1].Start) {
			return nil, fmt.Errorf("tier %q start %s does not follow previous tier", name, start)
		}
		tiers = append(tiers, Tier{Name: name, Start: ts})
	}
	return tiers, nil
}

// AssignTier returns the name of the tier containing ts. Total over all
// timestamps: anything before the second tier's start lands in the first
// tier, boundaries are lower-inclusive, and later timestamps never map
// to earlier tiers.
func AssignTier(ts time.Time, tiers []Tier) string {
	assigned := tiers[0].Name
	for _, tier := range tiers[1:] {
		if ts.Before(tier.Start) {
			break
		}
		assigned = tier.Name
	}
	return assigned
}

package features

import "sort"

// ReconstructThreads assigns thread structure in place: ThreadID is the
// root of each reply chain, ThreadStepIndex the tweet's chronological
// position within its thread, and IsThreadStarter marks index zero.
// When the true root is missing from the archive the last known parent
// in the chain becomes the thread id. Reply cycles (possible with
// corrupted archives) terminate at the first repeated id.
func ReconstructThreads(tweets []Tweet) {
	parent := make(map[string]string, len(tweets))
	for _, t := range tweets {
		if t.InReplyToStatusID != "" {
			parent[t.ID] = t.InReplyToStatusID
		}
	}

	rootCache := make(map[string]string, len(tweets))
	findRoot := func(id string) string {
		if root, ok := rootCache[id]; ok {
			return root
		}
		path := []string{id}
		seen := map[string]bool{id: true}
		curr := id
		for {
			next, ok := parent[curr]
			if !ok || seen[next] {
				break
			}
			curr = next
			path = append(path, curr)
			seen[curr] = true
		}
		root := path[len(path)-1]
		for _, node := range path {
			rootCache[node] = root
		}
		return root
	}

	for i := range tweets {
		tweets[i].ThreadID = findRoot(tweets[i].ID)
	}

	// Chronological position within each thread.
	byThread := make(map[string][]int)
	for i, t := range tweets {
		byThread[t.ThreadID] = append(byThread[t.ThreadID], i)
	}
	for _, indices := range byThread {
		sort.SliceStable(indices, func(a, b int) bool {
			return tweets[indices[a]].PostDatetime.Before(tweets[indices[b]].PostDatetime)
		})
		for step, idx := range indices {
			tweets[idx].ThreadStepIndex = step
			tweets[idx].IsThreadStarter = step == 0
		}
	}
}

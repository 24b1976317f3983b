package roadmap

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Topic flattened first level node of a roadmap
type Topic struct {
	// Label human readable label e.g. "Fundamental IT Skills"
	Label string `json:"label"`
	// NameSlug url segment e.g. "fundamental-it-skills"
	NameSlug string `json:"nameSlug"`
	// NodeID roadmap.sh node id
	NodeID string `json:"nodeId"`
}

// Key composite key nameSlug@nodeId
func (t Topic) Key() string {
	return Key(t.NameSlug, t.NodeID)
}

// ExtractTopLevelTopics collects the direct children of rootLabel as topics.
//
// Only entries with exactly two labels qualify. Topics are unique by their
// composite key, the first occurrence wins, and the result is sorted by label.
func ExtractTopLevelTopics(entries []IndexEntry, rootLabel string) []Topic {
	var (
		topics = []Topic{}
		seen   = map[string]bool{}
	)
	for _, entry := range entries {
		parts := entry.Path()
		if len(parts) != 2 || parts[0] != rootLabel || entry.NodeID == "" {
			continue
		}
		topic := Topic{
			Label:    parts[1],
			NameSlug: Slugify(parts[1]),
			NodeID:   entry.NodeID,
		}
		if seen[topic.Key()] {
			continue
		}
		seen[topic.Key()] = true
		topics = append(topics, topic)
	}
	SortTopics(topics)
	return topics
}

// SortTopics sorts topics by label using english collation
func SortTopics(topics []Topic) {
	// a collator is not safe for concurrent use
	c := collate.New(language.English)
	sort.SliceStable(topics, func(i, j int) bool {
		return c.CompareString(topics[i].Label, topics[j].Label) < 0
	})
}

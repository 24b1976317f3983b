package repo

import (
	"github.com/foomo/roadmapserver/responses"
	"github.com/foomo/roadmapserver/roadmap"
)

// Roadmap everything derived from the index for one root label
type Roadmap struct {
	Slug       string
	Label      string
	Tree       *roadmap.TreeNode
	Topics     []roadmap.Topic
	NumEntries int
	NumNodes   int
}

func newRoadmap(label string, entries []roadmap.IndexEntry) *Roadmap {
	var (
		tree       = roadmap.BuildTree(entries, label)
		numEntries = 0
	)
	for _, entry := range entries {
		if entry.Path()[0] == label {
			numEntries++
		}
	}
	return &Roadmap{
		Slug:       roadmap.Slugify(label),
		Label:      label,
		Tree:       tree,
		Topics:     roadmap.ExtractTopLevelTopics(entries, label),
		NumEntries: numEntries,
		NumNodes:   tree.Count(),
	}
}

// Summary response representation
func (r *Roadmap) Summary() responses.Roadmap {
	return responses.Roadmap{
		Slug:       r.Slug,
		Label:      r.Label,
		NumEntries: r.NumEntries,
		NumNodes:   r.NumNodes,
		NumTopics:  len(r.Topics),
	}
}

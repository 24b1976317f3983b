package roadmap

// IndexEntry one row of the static roadmap index dataset
type IndexEntry struct {
	NodeID     string   `json:"nodeId"`               // opaque id assigned by the roadmap service
	Text       string   `json:"text"`                 // "Root > A > B"
	Subjects   []string `json:"subjects,omitempty"`   // passed through
	Guides     []string `json:"guides,omitempty"`     // passed through
	IsOptional bool     `json:"isOptional,omitempty"` // passed through
	ID         string   `json:"_id,omitempty"`
}

// Path parsed labels of the entry
func (e IndexEntry) Path() []string {
	return ParsePath(e.Text)
}

package roadmap

// Resource link attached to a roadmap node
type Resource struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	ID    string `json:"_id,omitempty"`
}

// NodeContent content of a roadmap node as served by the upstream service.
// It is passed through and never persisted.
type NodeContent struct {
	ID            string     `json:"_id"`
	RoadmapSlug   string     `json:"roadmapSlug"`
	NodeID        string     `json:"nodeId"`
	CreatedAt     string     `json:"createdAt,omitempty"`
	UpdatedAt     string     `json:"updatedAt,omitempty"`
	Description   string     `json:"description"`
	Resources     []Resource `json:"resources"`
	PaidResources []Resource `json:"paidResources"`
	Contribution  string     `json:"contribution,omitempty"`
}

// Normalize defaults absent collections to empty ones
func (c *NodeContent) Normalize() *NodeContent {
	if c.Resources == nil {
		c.Resources = []Resource{}
	}
	if c.PaidResources == nil {
		c.PaidResources = []Resource{}
	}
	return c
}

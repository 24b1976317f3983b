package responses

// Roadmap summary of a loaded roadmap
type Roadmap struct {
	Slug       string `json:"slug"`
	Label      string `json:"label"`
	NumEntries int    `json:"numEntries"`
	NumNodes   int    `json:"numNodes"`
	NumTopics  int    `json:"numTopics"`
}

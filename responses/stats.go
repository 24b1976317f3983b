package responses

type Stats struct {
	NumberOfRoadmaps int `json:"numberOfRoadmaps"`
	NumberOfEntries  int `json:"numberOfEntries"`
	NumberOfNodes    int `json:"numberOfNodes"`
	NumberOfTopics   int `json:"numberOfTopics"`
	// seconds
	RepoRuntime float64 `json:"repoRuntime"`
	// seconds
	OwnRuntime float64 `json:"ownRuntime"`
}

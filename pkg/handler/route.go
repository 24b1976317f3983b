package handler

// Route type, used as metrics label
type Route string

const (
	// RouteGetNode node content as upstream json
	RouteGetNode Route = "getNode"
	// RouteGetNodeHTML node content panel
	RouteGetNodeHTML Route = "getNodeHTML"
	// RouteGetRoadmaps list the loaded roadmaps
	RouteGetRoadmaps Route = "getRoadmaps"
	// RouteGetTree tree of a roadmap
	RouteGetTree Route = "getTree"
	// RouteGetTreeHTML tree of a roadmap as disclosure widgets
	RouteGetTreeHTML Route = "getTreeHTML"
	// RouteGetTopics top level topics of a roadmap
	RouteGetTopics Route = "getTopics"
	// RouteGetTopicsHTML topic picker of a roadmap
	RouteGetTopicsHTML Route = "getTopicsHTML"
	// RouteGetIndex get the whole index
	RouteGetIndex Route = "getIndex"
	// RouteUpdate update index
	RouteUpdate Route = "update"
)

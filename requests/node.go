package requests

import (
	"errors"
	"net/url"
	"strings"

	"github.com/foomo/roadmapserver/responses"
	"github.com/foomo/roadmapserver/roadmap"
	"github.com/go-playground/validator/v10"
)

// MessageMissingNodeParams reply when any of the node parameters is missing
const MessageMissingNodeParams = "Missing roadmapSlug, nodeId, or name"

// Node - request the content of a single roadmap node
type Node struct {
	// roadmap slug e.g. "cyber-security"
	RoadmapSlug string `json:"roadmapSlug" validate:"required,roadmapslug"`
	// node id assigned by the roadmap service
	NodeID string `json:"nodeId" validate:"required,nodeid"`
	// node label or its slug
	Name string `json:"name" validate:"required,nameslug"`
}

// NewNode trims the given parameters
func NewNode(roadmapSlug, nodeID, name string) *Node {
	return &Node{
		RoadmapSlug: strings.TrimSpace(roadmapSlug),
		NodeID:      strings.TrimSpace(nodeID),
		Name:        strings.TrimSpace(name),
	}
}

// NodeFromQuery reads roadmapSlug, nodeId and name from query values
func NodeFromQuery(q url.Values) *Node {
	return NewNode(q.Get("roadmapSlug"), q.Get("nodeId"), q.Get("name"))
}

// NameSlug slugified name
func (n *Node) NameSlug() string {
	return roadmap.Slugify(n.Name)
}

// Key composite key nameSlug@nodeId
func (n *Node) Key() string {
	return roadmap.Key(n.NameSlug(), n.NodeID)
}

// Query encodes the request as query values
func (n *Node) Query() url.Values {
	return url.Values{
		"roadmapSlug": {n.RoadmapSlug},
		"nodeId":      {n.NodeID},
		"name":        {n.Name},
	}
}

// Validate returns a *responses.Error with status 400 if the request is not
// usable to build an upstream url
func (n *Node) Validate() error {
	err := validate.Struct(n)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return responses.NewBadRequest(err.Error())
	}
	for _, fieldErr := range fieldErrs {
		if fieldErr.Tag() == "required" {
			return responses.NewBadRequest(MessageMissingNodeParams)
		}
	}
	return responses.NewBadRequest("Invalid " + fieldErrs[0].Field())
}

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/foomo/roadmapserver/pkg/utils"
	"github.com/foomo/roadmapserver/requests"
	"github.com/foomo/roadmapserver/responses"
	"github.com/foomo/roadmapserver/roadmap"
	"github.com/pkg/errors"
)

// Client a roadmap server client. Errors replied by the server are of
// type *responses.Error.
type Client struct {
	t transport
}

// NewHTTPClient server is the url of the api including its base path
// e.g. http://127.0.0.1:8080/api/roadmap
func NewHTTPClient(server string, opts ...HTTPTransportOption) (*Client, error) {
	if !utils.IsValidUrl(server) {
		return nil, errors.Errorf("invalid server url: %q", server)
	}
	return &Client{
		t: NewHTTPTransport(server, opts...),
	}, nil
}

// GetNode content of a single roadmap node
func (c *Client) GetNode(ctx context.Context, roadmapSlug, nodeID, name string) (*roadmap.NodeContent, error) {
	req := requests.NewNode(roadmapSlug, nodeID, name)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	content := &roadmap.NodeContent{}
	if err := c.t.call(ctx, http.MethodGet, "/node", req.Query(), content); err != nil {
		return nil, err
	}
	return content.Normalize(), nil
}

// GetRoadmaps summaries of all roadmaps
func (c *Client) GetRoadmaps(ctx context.Context) ([]responses.Roadmap, error) {
	var roadmaps []responses.Roadmap
	if err := c.t.call(ctx, http.MethodGet, "/roadmaps", nil, &roadmaps); err != nil {
		return nil, err
	}
	return roadmaps, nil
}

// GetTree hierarchy of a roadmap
func (c *Client) GetTree(ctx context.Context, slug string) (*roadmap.TreeNode, error) {
	tree := &roadmap.TreeNode{}
	if err := c.t.call(ctx, http.MethodGet, "/roadmaps/"+url.PathEscape(slug)+"/tree", nil, tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// GetTopics top level topics of a roadmap
func (c *Client) GetTopics(ctx context.Context, slug string) ([]roadmap.Topic, error) {
	var topics []roadmap.Topic
	if err := c.t.call(ctx, http.MethodGet, "/roadmaps/"+url.PathEscape(slug)+"/topics", nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// GetIndex the whole index the server has loaded
func (c *Client) GetIndex(ctx context.Context) ([]roadmap.IndexEntry, error) {
	type indexResponse struct {
		Reply []roadmap.IndexEntry `json:"reply"`
	}
	resp := &indexResponse{}
	if err := c.t.call(ctx, http.MethodGet, "/index", nil, resp); err != nil {
		return nil, err
	}
	return resp.Reply, nil
}

// Update tell the server to update itself
func (c *Client) Update(ctx context.Context) (*responses.Update, error) {
	resp := &responses.Update{}
	if err := c.t.call(ctx, http.MethodPost, "/update", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ShutDown() {
	c.t.shutdown()
}

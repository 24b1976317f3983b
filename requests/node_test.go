package requests_test

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/foomo/roadmapserver/requests"
	"github.com/foomo/roadmapserver/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeValidate(t *testing.T) {
	tests := map[string]struct {
		req     *requests.Node
		message string
	}{
		"valid":             {requests.NewNode("cyber-security", "abc_12-X", "Networking"), ""},
		"valid upper slug":  {requests.NewNode("Cyber-Security", "abc", "Networking"), ""},
		"missing slug":      {requests.NewNode("", "abc", "Networking"), requests.MessageMissingNodeParams},
		"missing node":      {requests.NewNode("cyber-security", "  ", "Networking"), requests.MessageMissingNodeParams},
		"missing name":      {requests.NewNode("cyber-security", "abc", ""), requests.MessageMissingNodeParams},
		"invalid slug":      {requests.NewNode("cyber_security", "abc", "Networking"), "Invalid roadmapSlug"},
		"slug traversal":    {requests.NewNode("../etc", "abc", "Networking"), "Invalid roadmapSlug"},
		"node traversal":    {requests.NewNode("cyber-security", "../abc", "Networking"), "Invalid nodeId"},
		"node with slash":   {requests.NewNode("cyber-security", "a/b", "Networking"), "Invalid nodeId"},
		"node with at":      {requests.NewNode("cyber-security", "a@b", "Networking"), "Invalid nodeId"},
		"name without slug": {requests.NewNode("cyber-security", "abc", "!!!"), "Invalid name"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.message == "" {
				require.NoError(t, err)
				return
			}
			var apiErr *responses.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestNodeFromQuery(t *testing.T) {
	req := requests.NodeFromQuery(url.Values{
		"roadmapSlug": {" cyber-security "},
		"nodeId":      {"abc "},
		"name":        {" Cloud & Network Security"},
	})
	assert.Equal(t, "cyber-security", req.RoadmapSlug)
	assert.Equal(t, "abc", req.NodeID)
	assert.Equal(t, "cloud-and-network-security", req.NameSlug())
	assert.Equal(t, "cloud-and-network-security@abc", req.Key())
	assert.Equal(t, req, requests.NodeFromQuery(req.Query()))
}

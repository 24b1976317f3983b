package client

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/foomo/roadmapserver/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	httpTransport struct {
		client   *http.Client
		endpoint string
	}
	HTTPTransportOption func(*httpTransport)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func HTTPTransportWithHTTPClient(v *http.Client) HTTPTransportOption {
	return func(o *httpTransport) {
		o.client = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTPTransport will create a new http transport for the given server.
// Caution: the provided server url is not validated!
func NewHTTPTransport(server string, opts ...HTTPTransportOption) transport {
	inst := &httpTransport{
		endpoint: server,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (ht *httpTransport) shutdown() {
	ht.client.CloseIdleConnections()
}

func (ht *httpTransport) call(ctx context.Context, method, path string, query url.Values, response interface{}) error {
	endpoint := ht.endpoint + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	httpResponse, err := ht.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer httpResponse.Body.Close()

	responseBytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		respErr := &responses.Error{}
		if err := json.Unmarshal(responseBytes, respErr); err != nil || respErr.Message == "" {
			respErr.Message = http.StatusText(httpResponse.StatusCode)
		}
		respErr.Status = httpResponse.StatusCode
		return respErr
	}
	if len(responseBytes) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(responseBytes, response)
}

package client

import (
	"context"
	"net/url"
)

type transport interface {
	call(ctx context.Context, method, path string, query url.Values, response interface{}) error
	shutdown()
}

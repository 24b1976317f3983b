// Package mock provides a fake roadmap content service.
package mock

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const (
	// Delay applied to every upstream response
	Delay = 50 * time.Millisecond

	// node ids with a special behavior
	NodeIDFail     = "fail500"
	NodeIDNotJSON  = "notjson"
	NodeIDSlow     = "slow"
	NodeIDNotFound = "missing"
)

// Upstream fake content service serving the files in mock/content
type Upstream struct {
	*httptest.Server
	requests    atomic.Int64
	lastAccept  string
	lastPath    string
	lastRequest sync.Mutex
}

func NewUpstream(tb testing.TB) *Upstream {
	tb.Helper()
	_, filename, _, _ := runtime.Caller(0)
	contentDir := path.Join(path.Dir(filename), "content")

	u := &Upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		u.requests.Add(1)
		u.lastRequest.Lock()
		u.lastAccept = req.Header.Get("Accept")
		u.lastPath = req.URL.Path
		u.lastRequest.Unlock()

		time.Sleep(Delay)

		file := path.Base(req.URL.Path)
		nodeID := strings.TrimSuffix(file[strings.LastIndex(file, "@")+1:], ".json")
		switch nodeID {
		case NodeIDFail:
			http.Error(w, strings.Repeat("x", 1000), http.StatusInternalServerError)
			return
		case NodeIDNotJSON:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>not json</html>"))
			return
		case NodeIDSlow:
			select {
			case <-time.After(2 * time.Second):
			case <-req.Context().Done():
			}
			return
		}

		data, err := os.ReadFile(path.Join(contentDir, file))
		if err != nil {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
	tb.Cleanup(u.Close)
	return u
}

// Requests number of requests served so far
func (u *Upstream) Requests() int64 {
	return u.requests.Load()
}

// LastAccept accept header of the last request
func (u *Upstream) LastAccept() string {
	u.lastRequest.Lock()
	defer u.lastRequest.Unlock()
	return u.lastAccept
}

// LastPath url path of the last request
func (u *Upstream) LastPath() string {
	u.lastRequest.Lock()
	defer u.lastRequest.Unlock()
	return u.lastPath
}

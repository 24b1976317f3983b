// Package mock serves index fixtures for repo and handler tests.
package mock

import (
	"net/http"
	"net/http/httptest"
	"path"
	"runtime"
	"testing"
	"time"
)

// Delay applied to every mock response
const Delay = 50 * time.Millisecond

// Dir absolute path of the fixture directory
func Dir() string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Dir(filename)
}

// File absolute path of a fixture
func File(name string) string {
	return path.Join(Dir(), name)
}

// GetMockData starts a server for the index fixtures and returns it along
// with a directory to keep the history in
func GetMockData(tb testing.TB) (*httptest.Server, string) {
	tb.Helper()
	mockDir := Dir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(Delay)
		mockFilename := path.Join(mockDir, path.Clean("/"+req.URL.Path))
		http.ServeFile(w, req, mockFilename)
	}))
	tb.Cleanup(server.Close)

	return server, tb.TempDir()
}

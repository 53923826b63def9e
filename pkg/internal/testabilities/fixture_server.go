package testabilities

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

type ServerFixture interface {
	WithRoute(pattern string, handler func(w http.ResponseWriter, r *http.Request)) ServerBuilder

	URL() *url.URL
}

type ServerBuilder interface {
	WithRoute(pattern string, handler func(w http.ResponseWriter, r *http.Request)) ServerBuilder
	Started() (cleanup func())
}

type serverFixture struct {
	testing.TB
	mux    *http.ServeMux
	server *httptest.Server
}

func NewServerFixture(t testing.TB) ServerFixture {
	return &serverFixture{
		TB:  t,
		mux: http.NewServeMux(),
	}
}

func (f *serverFixture) WithRoute(pattern string, handler func(w http.ResponseWriter, r *http.Request)) ServerBuilder {
	f.mux.HandleFunc(pattern, handler)
	return f
}

func (f *serverFixture) Started() (cleanup func()) {
	server, cleanup := f.newServer()
	f.server = server

	return cleanup
}

func (f *serverFixture) URL() *url.URL {
	require.NotNil(f, f.server, "server must be started before URL can be retrieved: invalid test setup")

	serverURL, err := url.Parse(f.server.URL)
	require.NoErrorf(f, err, "failed to parse server URL (%s): invalid test setup", f.server.URL)

	return serverURL
}

func (f *serverFixture) newServer() (server *httptest.Server, cleanup func()) {
	server = httptest.NewServer(f.mux)
	cleanup = func() {
		server.Close()
	}
	return server, cleanup
}

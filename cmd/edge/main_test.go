package main

import (
	"bytes"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownIdle(t *testing.T) {
	var buf bytes.Buffer
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: http.NotFoundHandler()}
	go func() { _ = srv.Serve(ln) }()

	require.NoError(t, shutdown(srv, time.Second, zerolog.New(&buf)))
	assert.Contains(t, buf.String(), "Edge proxy exited")
}

func TestShutdownLogsTimeout(t *testing.T) {
	var buf bytes.Buffer
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
	})}
	go func() { _ = srv.Serve(ln) }()
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/en")
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-entered

	err = shutdown(srv, 20*time.Millisecond, zerolog.New(&buf))
	close(release)

	require.Error(t, err)
	assert.Contains(t, buf.String(), "Shutdown failed")
}

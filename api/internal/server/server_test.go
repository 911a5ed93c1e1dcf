package server_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/Astemirdum/bookshelf/api/config"
	"github.com/Astemirdum/bookshelf/api/internal/server"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	require.NoError(t, l.Close())
	return port
}

func TestServer_RunStop(t *testing.T) {
	cfg := config.HTTPServer{Host: "127.0.0.1", Port: freePort(t), ReadTimeout: time.Second, WriteTimeout: time.Second}
	srv := server.NewServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + srv.Addr())
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusTeapot
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, <-done)
}

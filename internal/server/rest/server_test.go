package rest

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServer_StopsOnCancel(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", http.NotFoundHandler(), logging.NewNop(), time.Second, time.Second, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServer_ListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	s := NewHTTPServer(l.Addr().String(), http.NotFoundHandler(), logging.NewNop(), time.Second, time.Second, time.Second)
	assert.Error(t, s.Run(context.Background()))
}

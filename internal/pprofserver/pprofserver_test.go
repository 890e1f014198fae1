package pprofserver_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/myrjola/nai/internal/pprofserver"
	"github.com/myrjola/nai/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestLaunch(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	addr, err := pprofserver.Launch(ctx, "0", testhelpers.NewLogger(io.Discard))
	if err != nil {
		t.Skipf("IPv6 loopback unavailable: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr.String()+"/debug/pprof/cmdline", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

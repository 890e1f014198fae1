package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/nai/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestItems(t *testing.T) {
	out, err := execute(t, nil, "items")
	require.NoError(t, err)
	require.Contains(t, out, "Diamond Pickaxe (diamondpickaxe)\n  1. Who crafted the Diamond Pickaxe?\n")
	require.Contains(t, out, "Key (tool)\n  1. What opens?\n  2. Who owns it?\n")
}

func TestAsk(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		args    []string
		want    string
		wantErr error
	}{
		{
			name:   "answered",
			status: http.StatusOK,
			body:   `{"response":"The cellar door."}`,
			args:   []string{"ask", "Tool", "What", "opens?"},
			want:   "The cellar door.\n",
		},
		{
			name:    "application error",
			status:  http.StatusNotFound,
			body:    `{"error":"Context not found"}`,
			args:    []string{"ask", "tool", "What opens?"},
			want:    query.MessageApplicationError + "\n",
			wantErr: errNotAnswered,
		},
		{
			name:    "transport error",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			args:    []string{"ask", "tool", "What opens?"},
			want:    query.MessageTransportError + "\n",
			wantErr: errNotAnswered,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, query.GeneratePath, r.URL.Path)
				var req query.Request
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, query.Request{ItemType: "tool", Question: "What opens?"}, req)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			t.Cleanup(srv.Close)

			out, err := execute(t, map[string]string{"NAI_SERVER_URL": srv.URL}, tt.args...)
			require.Equal(t, tt.want, out)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAsk_InvalidArguments(t *testing.T) {
	_, err := execute(t, nil, "ask", "spoon", "Why?")
	require.Error(t, err)

	_, err = execute(t, nil, "ask", "tool")
	require.Error(t, err)

	_, err = execute(t, map[string]string{"NAI_SERVER_URL": "localhost:5000"}, "ask", "tool", "Why?")
	require.Error(t, err, "server url needs a scheme")
}

func TestConfigure_InvalidEnv(t *testing.T) {
	tests := map[string]string{
		"LOG_LEVEL":   "loud",
		"NAI_SLOTS":   "five",
		"NAI_CATALOG": "/does/not/exist.yaml",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, map[string]string{name: value}, "items")
			require.Error(t, err)
		})
	}
}

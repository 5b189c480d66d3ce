package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register(Tool{
		Name:        "echo",
		Description: "echoes its message argument back",
		Schema: toolSchema{
			Type:       "object",
			Properties: map[string]schemaProperty{"message": {Type: "string"}},
			Required:   []string{"message"},
		},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{"success": true, "echoed": args["message"]}, nil
		},
	})
	r.Register(Tool{
		Name:        "boom",
		Description: "always fails",
		Schema:      toolSchema{Type: "object"},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return nil, assertErr
		},
	})
	return r
}

var assertErr = errBoom{}

type errBoom struct{}

func (errBoom) Error() string { return "boom handler failed" }

func runLines(t *testing.T, srv *Server, lines ...string) []response {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	srv.out = &out

	err := srv.Serve(context.Background(), in)
	require.NoError(t, err)

	var responses []response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestInitializeHandshake(t *testing.T) {
	srv := NewServer(newTestRegistry(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	require.Len(t, responses, 1)
	assert.Nil(t, responses[0].Error)

	result, ok := responses[0].Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, protocolVersion, result["protocolVersion"])
}

func TestToolsListReturnsRegisteredTools(t *testing.T) {
	srv := NewServer(newTestRegistry(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Len(t, responses, 1)

	result, ok := responses[0].Result.(map[string]any)
	require.True(t, ok)
	tools, ok := result["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 2)
}

func TestToolsCallInvokesHandler(t *testing.T) {
	srv := NewServer(newTestRegistry(), nil)
	responses := runLines(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":{"message":"hi"}}}`)
	require.Len(t, responses, 1)
	assert.Nil(t, responses[0].Error)

	result, ok := responses[0].Result.(map[string]any)
	require.True(t, ok)
	content, ok := result["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)

	block, ok := content[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "text", block["type"])
	assert.Contains(t, block["text"], "hi")
	assert.NotEqual(t, true, result["isError"])
}

func TestToolsCallUnknownToolReturnsProtocolError(t *testing.T) {
	srv := NewServer(newTestRegistry(), nil)
	responses := runLines(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"missing","arguments":{}}}`)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, errCodeMethodNotFound, responses[0].Error.Code)
}

func TestToolsCallHandlerErrorBecomesToolLevelError(t *testing.T) {
	srv := NewServer(newTestRegistry(), nil)
	responses := runLines(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"boom","arguments":{}}}`)
	require.Len(t, responses, 1)
	assert.Nil(t, responses[0].Error)

	result, ok := responses[0].Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["isError"])
}

func TestNotificationProducesNoResponse(t *testing.T) {
	srv := NewServer(newTestRegistry(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Empty(t, responses)
}

func TestUnknownMethodReturnsProtocolError(t *testing.T) {
	srv := NewServer(newTestRegistry(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","id":1,"method":"nonsense"}`)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, errCodeMethodNotFound, responses[0].Error.Code)
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	r := NewRegistry()
	r.Register(Tool{Name: "dup", Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return nil, nil
	}})
	assert.Panics(t, func() {
		r.Register(Tool{Name: "dup", Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return nil, nil
		}})
	})
}

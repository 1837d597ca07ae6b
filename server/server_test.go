package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/dhamidi/mcpgo/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	calls []protocol.SendableMessage
	fn    func(req *protocol.Request) (*protocol.Response, error)
}

func (s *stubService) Call(ctx context.Context, msg protocol.SendableMessage) (*protocol.Response, error) {
	s.calls = append(s.calls, msg)
	req, ok := msg.(*protocol.Request)
	if !ok {
		return nil, nil
	}
	if s.fn != nil {
		return s.fn(req)
	}
	return protocol.NewSuccess(req.ID, map[string]any{"ok": true})
}

func newTestServer(svc Service) *Server {
	return NewServer(svc, log.New(io.Discard, "", 0))
}

func TestServerRunEchoesSuccessResponse(t *testing.T) {
	in := bytes.NewBufferString(`{"jsonrpc":"2.0","id":"1","method":"ping"}` + "\n")
	var out bytes.Buffer
	transport := NewByteTransport(in, &out)
	svc := &stubService{}

	err := newTestServer(svc).Run(context.Background(), transport)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"1","result":{"ok":true}}`, string(bytes.TrimSpace(out.Bytes())))
}

func TestServerRunIgnoresNotifications(t *testing.T) {
	in := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	var out bytes.Buffer
	transport := NewByteTransport(in, &out)
	svc := &stubService{}

	err := newTestServer(svc).Run(context.Background(), transport)
	require.NoError(t, err)
	assert.Empty(t, out.Bytes())
	assert.Len(t, svc.calls, 0, "request loop must not call the service for notifications")
}

func TestServerRunSkipsMalformedFramesAndContinues(t *testing.T) {
	in := bytes.NewBufferString("not json\n" + `{"jsonrpc":"2.0","id":"2","method":"ping"}` + "\n")
	var out bytes.Buffer
	transport := NewByteTransport(in, &out)
	svc := &stubService{}

	err := newTestServer(svc).Run(context.Background(), transport)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"2","result":{"ok":true}}`, string(bytes.TrimSpace(out.Bytes())))
}

func TestServerRunTerminatesCleanlyAtEOF(t *testing.T) {
	transport := NewByteTransport(bytes.NewReader(nil), io.Discard)
	err := newTestServer(&stubService{}).Run(context.Background(), transport)
	assert.NoError(t, err)
}

func TestServerRunConvertsServiceErrorToErrorResponse(t *testing.T) {
	in := bytes.NewBufferString(`{"jsonrpc":"2.0","id":"3","method":"boom"}` + "\n")
	var out bytes.Buffer
	transport := NewByteTransport(in, &out)
	svc := &stubService{fn: func(req *protocol.Request) (*protocol.Response, error) {
		return nil, fmt.Errorf("kaboom")
	}}

	err := newTestServer(svc).Run(context.Background(), transport)
	require.NoError(t, err)

	resp, decodeErr := protocol.DecodeResponse(bytes.TrimSpace(out.Bytes()))
	require.NoError(t, decodeErr)
	require.True(t, resp.IsError())
	assert.Equal(t, protocol.ErrCodeInternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "kaboom")
}

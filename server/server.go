package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dhamidi/mcpgo/protocol"
)

// Service is the capability the request loop dispatches requests to.
// MCPServer implements it; tests can substitute a stub.
type Service interface {
	Call(ctx context.Context, msg protocol.SendableMessage) (*protocol.Response, error)
}

// Server drives the read-dispatch-write loop described in spec §4.F: pull a
// frame from the transport, hand Requests to the service, ignore
// Notifications, write back any response produced.
type Server struct {
	service Service
	logger  *log.Logger
}

// NewServer builds a request loop around service. A nil logger defaults to
// stderr, matching the teacher's plain fmt/log-to-stderr convention.
func NewServer(service Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stderr, "mcpgo-server: ", log.LstdFlags)
	}
	return &Server{service: service, logger: logger}
}

// Run decodes frames from transport until the stream ends or ctx is
// canceled. Per-frame decode errors are logged and skipped; a method not
// found or a tool failure becomes a JSON-RPC error response, not a loop
// termination.
func (s *Server) Run(ctx context.Context, transport *ByteTransport) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := transport.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if isDecodeError(err) {
				s.logger.Printf("skipping malformed frame: %v", err)
				continue
			}
			return fmt.Errorf("server: read frame: %w", err)
		}

		req, isRequest := msg.(*protocol.Request)
		if !isRequest {
			continue
		}

		resp, callErr := s.service.Call(ctx, req)
		if callErr != nil {
			resp = protocol.NewError(req.ID, protocol.ErrCodeInternalError, callErr.Error())
		}
		if resp == nil {
			continue
		}

		if err := transport.WriteMessage(resp); err != nil {
			return fmt.Errorf("server: write response: %w", err)
		}
	}
}

func isDecodeError(err error) bool {
	var utf8Err *protocol.UTF8Error
	var invalidErr *protocol.InvalidMessageError
	var jsonErr *protocol.JSONError
	return errors.As(err, &utf8Err) || errors.As(err, &invalidErr) || errors.As(err, &jsonErr)
}

// Package server implements the MCP server-side request-processing loop:
// a framed JSON-RPC stream reader, a request loop that dispatches to a
// pluggable service, and the typed tool-registry/router described in
// §4.E–§4.H.
package server

import (
	"bufio"
	"io"

	"github.com/dhamidi/mcpgo/protocol"
)

// readBufferSize is sized up from the stdlib default to comfortably hold
// large tool-call payloads, per spec.md's "≥ 2 MiB" recommendation.
const readBufferSize = 2 * 1024 * 1024

// ByteTransport decodes a line-delimited JSON-RPC 2.0 stream read from r
// and frames responses written to w.
type ByteTransport struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewByteTransport wraps r/w as the server's framed transport.
func NewByteTransport(r io.Reader, w io.Writer) *ByteTransport {
	return &ByteTransport{reader: bufio.NewReaderSize(r, readBufferSize), writer: w}
}

// Next pulls the next frame. It returns io.EOF when the underlying reader
// is exhausted and passes any other read error through unchanged. A decode
// error (*protocol.UTF8Error, *protocol.InvalidMessageError or
// *protocol.JSONError) concerns only its own frame: the stream continues to
// decode subsequent frames on the next call.
func (t *ByteTransport) Next() (protocol.SendableMessage, error) {
	line, err := t.reader.ReadBytes('\n')
	if len(line) == 0 {
		return nil, err
	}

	msg, decodeErr := protocol.DecodeFrame(trimNewline(line))
	if decodeErr != nil {
		return nil, decodeErr
	}
	return msg, nil
}

func trimNewline(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

// WriteMessage writes a single JSON-RPC response line.
func (t *ByteTransport) WriteMessage(resp *protocol.Response) error {
	data, err := resp.Encode()
	if err != nil {
		return err
	}
	_, err = t.writer.Write(append(data, '\n'))
	return err
}

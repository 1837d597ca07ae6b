// Package client implements the MCP client-side transport: an actor that
// owns a spawned server subprocess and multiplexes concurrent outbound
// requests onto its stdin/stdout, correlating responses back to callers and
// surfacing process failures out-of-band.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/dhamidi/mcpgo/protocol"
)

// ErrChannelClosed is returned when a send could not complete because the
// transport actor has already shut down (queue gone, or the pending waiter
// was cleared at shutdown).
var ErrChannelClosed = errors.New("client: channel closed")

// StdioProcessError reports an out-of-band failure of the child process:
// its stderr output, or a generic message if it produced none.
type StdioProcessError struct{ Message string }

func (e *StdioProcessError) Error() string {
	return fmt.Sprintf("client: stdio process error: %s", e.Message)
}

// outboundQueueCapacity is the bounded MPSC queue size recommended by the
// spec (>= 32); producers back-pressure once it fills.
const outboundQueueCapacity = 32

// transportMessage is the internal envelope for queued outbound traffic.
// responseTx is present iff message is a *protocol.Request.
type transportMessage struct {
	message    protocol.SendableMessage
	responseTx chan responseResult
}

// StdioTransport spawns a child process and speaks line-delimited
// JSON-RPC 2.0 over its stdin/stdout, exactly as described in §4.C.
type StdioTransport struct {
	Command string
	Args    []string
	Env     []string // extra "KEY=VALUE" entries appended to the child's environment
	Logger  *log.Logger
}

// NewStdioTransport builds a transport for the given command and args. If
// logger is nil, diagnostics go to a logger writing to stderr (stdout must
// stay clean for wire traffic).
func NewStdioTransport(command string, args []string, env []string, logger *log.Logger) *StdioTransport {
	if logger == nil {
		logger = log.New(os.Stderr, "mcpgo-client: ", log.LstdFlags)
	}
	return &StdioTransport{Command: command, Args: args, Env: env, Logger: logger}
}

// Start spawns the child process and returns a handle for sending messages
// to it. The process is killed when ctx is cancelled.
func (t *StdioTransport) Start(ctx context.Context) (*StdioTransportHandle, error) {
	cmd := exec.CommandContext(ctx, t.Command, t.Args...)
	if len(t.Env) > 0 {
		cmd.Env = append(os.Environ(), t.Env...)
	}
	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("client: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("client: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("client: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("client: spawn %q: %w", t.Command, err)
	}

	receiver := make(chan transportMessage, outboundQueueCapacity)
	errCh := make(chan error, 1)
	closed := make(chan struct{})

	actor := &stdioActor{
		receiver: receiver,
		pending:  newPendingRequests(t.Logger),
		cmd:      cmd,
		errorTx:  errCh,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		logger:   t.Logger,
		closed:   closed,
	}
	go actor.run()

	return &StdioTransportHandle{
		sender: receiver,
		errCh:  errCh,
		closed: closed,
	}, nil
}

// stdioActor owns the child process and runs the reader/writer sub-tasks
// described in §4.C, racing them (and the process's own exit) in its
// supervisor.
type stdioActor struct {
	receiver <-chan transportMessage
	pending  *pendingRequests
	cmd      *exec.Cmd
	errorTx  chan<- error
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	stderr   io.ReadCloser
	logger   *log.Logger
	closed   chan struct{}
}

func (a *stdioActor) run() {
	readerDone := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		a.readLoop()
		close(readerDone)
	}()
	go func() {
		a.writeLoop()
		close(writerDone)
	}()

	// os.Process.Wait rather than exec.Cmd.Wait: Cmd.Wait closes the stdout
	// and stderr pipes as soon as the child exits, which would discard the
	// stderr text before drainStderr below has read it.
	waitDone := make(chan struct{})
	go func() {
		_, _ = a.cmd.Process.Wait()
		close(waitDone)
	}()

	// Supervisor: the first of {reader, writer, process exit} to finish
	// triggers cleanup.
	select {
	case <-readerDone:
	case <-writerDone:
	case <-waitDone:
	}

	stderrText := drainStderr(a.stderr)
	message := stderrText
	if message == "" {
		message = "Process ended unexpectedly"
	}
	select {
	case a.errorTx <- &StdioProcessError{Message: message}:
	default:
		// error channel already holds an undelivered failure
	}

	a.pending.clear()
	close(a.closed)

	// Release the pipes and the Cmd's other resources once the child is gone.
	<-waitDone
	_ = a.cmd.Wait()
}

func drainStderr(r io.Reader) string {
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readLoop reads line-delimited responses from the child's stdout until
// EOF, correlating each to its waiter. Lines that fail to parse as a
// response are logged and skipped; they are never propagated to a waiter,
// and server-initiated requests are deliberately unsupported.
func (a *stdioActor) readLoop() {
	reader := bufio.NewReaderSize(a.stdout, 2*1024*1024)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			resp, decodeErr := protocol.DecodeResponse(trimNewline(line))
			if decodeErr != nil {
				a.logger.Printf("client: received invalid message: %v", decodeErr)
			} else {
				a.pending.respond(resp.ID, responseResult{resp: resp})
			}
		}
		if err != nil {
			if err != io.EOF {
				a.logger.Printf("client: error reading line: %v", err)
			}
			return
		}
	}
}

func trimNewline(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

// writeLoop drains the outbound queue, serializing and flushing each
// envelope to the child's stdin in FIFO order.
func (a *stdioActor) writeLoop() {
	for tm := range a.receiver {
		encoded, err := tm.message.Encode()
		if err != nil {
			if tm.responseTx != nil {
				tm.responseTx <- responseResult{err: fmt.Errorf("client: serialize message: %w", err)}
				close(tm.responseTx)
			}
			continue
		}

		if req, ok := tm.message.(*protocol.Request); ok && tm.responseTx != nil {
			a.pending.insert(req.ID, tm.responseTx)
		}

		// cmd.StdinPipe() hands back an unbuffered pipe end, so each Write
		// already reaches the child without a separate flush step.
		if _, err := a.stdin.Write(append(encoded, '\n')); err != nil {
			a.logger.Printf("client: error writing message: %v", err)
			return
		}
	}
}

// StdioTransportHandle is a cheaply cloneable send-side façade over the
// transport actor.
type StdioTransportHandle struct {
	sender chan<- transportMessage
	closed <-chan struct{}

	errMu sync.Mutex
	errCh <-chan error
}

// Send delivers msg to the child process. Requests block until a matching
// response arrives (or the actor shuts down); notifications return as soon
// as they are enqueued. Either way, a pending process failure observed
// after sending overrides a successful result.
func (h *StdioTransportHandle) Send(ctx context.Context, msg protocol.SendableMessage) (*protocol.Response, error) {
	_, isRequest := msg.(*protocol.Request)

	var respCh chan responseResult
	if isRequest {
		respCh = make(chan responseResult, 1)
	}

	tm := transportMessage{message: msg, responseTx: respCh}
	select {
	case h.sender <- tm:
	case <-h.closed:
		return nil, h.overrideWithProcessError(ErrChannelClosed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if !isRequest {
		return nil, h.overrideWithProcessError(nil)
	}

	select {
	case result, ok := <-respCh:
		if !ok {
			return nil, h.overrideWithProcessError(ErrChannelClosed)
		}
		if result.err != nil {
			return nil, h.overrideWithProcessError(result.err)
		}
		if err := h.checkForErrors(); err != nil {
			return nil, err
		}
		return result.resp, nil
	case <-h.closed:
		return nil, h.overrideWithProcessError(ErrChannelClosed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// overrideWithProcessError runs the unconditional post-send check the
// original performs (send_message(...).await?; self.check_for_errors().await?
// in transport/stdio.rs): a pending StdioProcessError always wins over
// fallback, so a crash reported after a send was already queued or answered
// is never masked as a plain ErrChannelClosed.
func (h *StdioTransportHandle) overrideWithProcessError(fallback error) error {
	if err := h.checkForErrors(); err != nil {
		return err
	}
	return fallback
}

// checkForErrors non-blockingly polls the failure channel. Only one caller
// drains it at a time.
func (h *StdioTransportHandle) checkForErrors() error {
	h.errMu.Lock()
	defer h.errMu.Unlock()

	select {
	case err, ok := <-h.errCh:
		if !ok {
			return nil
		}
		return err
	default:
		return nil
	}
}

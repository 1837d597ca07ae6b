// Command mcpclient spawns an MCP server as a child process, sends it a
// single tools/list or tools/call request over stdio, prints the response,
// and exits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dhamidi/mcpgo/client"
	"github.com/dhamidi/mcpgo/protocol"
)

func main() {
	var (
		method     string
		argsJSON   string
		toolName   string
		timeoutSec int
	)
	flag.StringVar(&method, "method", "tools/list", "JSON-RPC method to invoke (tools/list or tools/call)")
	flag.StringVar(&toolName, "tool", "", "Tool name, for -method=tools/call")
	flag.StringVar(&argsJSON, "args", "{}", "JSON object of tool arguments, for -method=tools/call")
	flag.IntVar(&timeoutSec, "timeout", 10, "Seconds to wait for the server's response")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		log.Fatal("mcpclient: usage: mcpclient [flags] <server-command> [server-args...]")
	}
	serverArgs := flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()

	transport := client.NewStdioTransport(command, serverArgs, os.Environ(), log.New(os.Stderr, "mcpclient: ", log.LstdFlags))
	handle, err := transport.Start(ctx)
	if err != nil {
		log.Fatalf("mcpclient: start server: %v", err)
	}

	req, err := buildRequest(method, toolName, argsJSON)
	if err != nil {
		log.Fatalf("mcpclient: %v", err)
	}

	resp, err := handle.Send(ctx, req)
	if err != nil {
		log.Fatalf("mcpclient: send: %v", err)
	}

	if resp.IsError() {
		fmt.Fprintf(os.Stderr, "error %d: %s\n", resp.Error.Code, resp.Error.Message)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(json.RawMessage(resp.Result), "", "  ")
	if err != nil {
		fmt.Println(string(resp.Result))
		return
	}
	fmt.Println(string(out))
}

func buildRequest(method, toolName, argsJSON string) (*protocol.Request, error) {
	id := protocol.NewRequestID()
	switch method {
	case "tools/list":
		return protocol.NewRequest(id, "tools/list", struct{}{})
	case "tools/call":
		if toolName == "" {
			return nil, fmt.Errorf("-tool is required for -method=tools/call")
		}
		var args json.RawMessage
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return nil, fmt.Errorf("invalid -args JSON: %w", err)
		}
		return protocol.NewRequest(id, "tools/call", map[string]any{
			"name":      toolName,
			"arguments": args,
		})
	default:
		return nil, fmt.Errorf("unsupported method %q (expected tools/list or tools/call)", method)
	}
}

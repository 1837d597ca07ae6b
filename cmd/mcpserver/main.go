// Command mcpserver runs the demo tool suite (calculator, counter, notes,
// files) over stdio, reading JSON-RPC requests from stdin and writing
// responses to stdout.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/dhamidi/mcpgo/internal/store"
	"github.com/dhamidi/mcpgo/server"
	"github.com/dhamidi/mcpgo/server/tools"
	"github.com/spf13/afero"
)

func main() {
	var notesDBPath string
	flag.StringVar(&notesDBPath, "notes-db", store.DefaultNotesDatabasePath, "Path to the notes sqlite database")
	flag.Parse()

	notes, err := store.OpenNoteStore(notesDBPath)
	if err != nil {
		log.Fatalf("mcpserver: open notes database: %v", err)
	}
	defer notes.Close()

	var fs afero.Fs = afero.NewOsFs()

	builder := server.NewBuilder("mcpgo-demo", "Demo MCP server exposing a calculator, a shared counter, sqlite-backed notes, and filesystem tools").
		WithTool(tools.Calculator()).
		WithTool(tools.Increment()).
		WithTool(tools.Decrement()).
		WithTool(tools.GetValue()).
		WithTool(tools.AddNote()).
		WithTool(tools.ListNotes()).
		WithTool(tools.WriteFile()).
		WithTool(tools.ReadFile())

	server.WithState(builder, &tools.Counter{})
	server.WithState(builder, *notes)
	server.WithState(builder, fs)

	mcpServer := builder.Build()
	transport := server.NewByteTransport(os.Stdin, os.Stdout)

	log.Printf("mcpserver: ready")
	if err := server.NewServer(mcpServer, nil).Run(context.Background(), transport); err != nil {
		log.Fatalf("mcpserver: %v", err)
	}
}

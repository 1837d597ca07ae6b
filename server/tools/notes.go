package tools

import (
	"context"
	"encoding/json"

	"github.com/dhamidi/mcpgo/internal/store"
	"github.com/dhamidi/mcpgo/mcpcontext"
	"github.com/dhamidi/mcpgo/server"
	"google.golang.org/genai"
)

type addNoteArgs struct {
	Text string `json:"text"`
}

func noteContent(id, text string) server.Content {
	return server.Content{Type: "text", Text: id + ": " + text}
}

// AddNote persists a note through the *store.NoteStore injected via ctx,
// returning the generated id.
func AddNote() *server.ToolDescriptor {
	return &server.ToolDescriptor{
		Name:        "add_note",
		Description: "Save a note for later retrieval",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"text": {Type: genai.TypeString, Description: "The note's text"},
			},
			Required: []string{"text"},
		},
		Handler: func(ctx context.Context, shared *mcpcontext.Context, raw json.RawMessage) (any, error) {
			var args addNoteArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, server.InvalidParametersError("decode add_note arguments: %s", err)
			}

			notes := mcpcontext.MustGet[store.NoteStore](shared)
			id, err := notes.Get().Add(args.Text)
			if err != nil {
				return nil, server.ExecutionError("%s", err)
			}
			return id, nil
		},
	}
}

// ListNotes returns every stored note as a content sequence (the router's
// array-coercion path), one block per note.
func ListNotes() *server.ToolDescriptor {
	return &server.ToolDescriptor{
		Name:        "list_notes",
		Description: "List all saved notes",
		Schema:      &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		Handler: func(ctx context.Context, shared *mcpcontext.Context, raw json.RawMessage) (any, error) {
			notes := mcpcontext.MustGet[store.NoteStore](shared)
			all, err := notes.Get().List()
			if err != nil {
				return nil, server.ExecutionError("%s", err)
			}

			contents := make([]server.Content, len(all))
			for i, n := range all {
				contents[i] = noteContent(n.ID, n.Text)
			}
			return contents, nil
		},
	}
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the journal tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scaffold/internal/apperr"
	"github.com/starford/scaffold/internal/journalservice"
	"github.com/starford/scaffold/internal/models"
)

// Server wraps the MCP server with the journal tools.
type Server struct {
	mcp *server.MCPServer
	svc *journalservice.Service
}

// New creates a new MCP server with all journal tools registered.
func New(svc *journalservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Scaffold",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_event",
		mcp.WithDescription("Record a life event on the timeline."),
		mcp.WithString("timestamp", mcp.Required(), mcp.Description("When it happened, free-form (e.g. 2025-01-01)")),
		mcp.WithString("description", mcp.Required(), mcp.Description("What happened")),
		mcp.WithString("outcome", mcp.Description("How it turned out")),
	), s.addEvent)

	s.mcp.AddTool(mcp.NewTool("render_timeline",
		mcp.WithDescription("Render all timeline events, one 'timestamp: description -> outcome' line each."),
	), s.renderTimeline)

	s.mcp.AddTool(mcp.NewTool("add_affirmation",
		mcp.WithDescription("Add an affirmation to the end of the rotation."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Affirmation text")),
	), s.addAffirmation)

	s.mcp.AddTool(mcp.NewTool("next_affirmation",
		mcp.WithDescription("Return the next affirmation in round-robin order."),
	), s.nextAffirmation)

	s.mcp.AddTool(mcp.NewTool("reflect",
		mcp.WithDescription("Record a free-form reflection."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Reflection text")),
	), s.reflect)

	s.mcp.AddTool(mcp.NewTool("reflection_history",
		mcp.WithDescription("List every reflection, oldest first."),
	), s.reflectionHistory)

	s.mcp.AddTool(mcp.NewTool("add_hologram_layer",
		mcp.WithDescription("Attach a sensory facet to a concept. A later layer for the same facet replaces the earlier one."),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Concept name, e.g. Resilience")),
		mcp.WithString("facet", mcp.Required(), mcp.Description("Facet name, e.g. visual, sound, emotion")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Facet description")),
	), s.addHologramLayer)

	s.mcp.AddTool(mcp.NewTool("synthesize_concept",
		mcp.WithDescription("Combine the current layers of a concept into one 'facet: description | ...' line."),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Concept name")),
	), s.synthesizeConcept)

	s.mcp.AddTool(mcp.NewTool("run_drill",
		mcp.WithDescription("Store an expansion of a concept and compress it to the first n words for each requested count."),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Concept name")),
		mcp.WithString("expansion", mcp.Required(), mcp.Description("Full expansion text")),
		mcp.WithArray("word_counts", mcp.Description("Word counts to compress to, in order"),
			mcp.Items(map[string]any{"type": "integer"})),
	), s.runDrill)

	s.mcp.AddTool(mcp.NewTool("get_vault_format",
		mcp.WithDescription("Returns the vault document format. "+
			"Call this to understand what the journal tools store."),
	), s.getVaultFormat)

	// Resource: vault format contract.
	s.mcp.AddResource(
		mcp.NewResource(VaultFormatResourceURI, "Vault Format",
			mcp.WithResourceDescription("Structure of the JSON document holding all journal state."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readVaultFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolError converts a service error into a tool result the model can read.
func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrStorageCorrupt) {
		return mcp.NewToolResultError("vault document is corrupt, fix or restore it before retrying: " + err.Error())
	}
	return mcp.NewToolResultError(err.Error())
}

// requireText reads a string argument that must be present and non-empty.
func requireText(req mcp.CallToolRequest, key string) (string, error) {
	v, err := req.RequireString(key)
	if err != nil {
		return "", err
	}
	if err := validation.Validate(v, validation.Required); err != nil {
		return "", fmt.Errorf("%w: %s %s", apperr.ErrInvalidInput, key, err.Error())
	}
	return v, nil
}

func (s *Server) addEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ts, err := req.RequireString("timestamp")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	desc, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev := models.TimelineEvent{Timestamp: ts, Description: desc, Outcome: req.GetString("outcome", "")}
	if err := s.svc.AddEvent(ctx, ev); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("recorded: %s: %s -> %s", ev.Timestamp, ev.Description, ev.Outcome)), nil
}

func (s *Server) renderTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.svc.RenderTimeline(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if out == "" {
		return mcp.NewToolResultText("no events recorded"), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) addAffirmation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := requireText(req, "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.AddAffirmation(ctx, text); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("affirmation added"), nil
}

func (s *Server) nextAffirmation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.svc.NextAffirmation(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if text == "" {
		return mcp.NewToolResultText("no affirmations recorded"), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) reflect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := requireText(req, "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Reflect(ctx, text); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("reflection recorded"), nil
}

func (s *Server) reflectionHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.Reflections(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no reflections recorded"), nil
	}
	return mcp.NewToolResultText(strings.Join(items, "\n")), nil
}

func (s *Server) addHologramLayer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	concept, err := requireText(req, "concept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	facet, err := requireText(req, "facet")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	desc, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	synthesis, err := s.svc.AddHologramLayer(ctx, concept, facet, desc)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(synthesis), nil
}

func (s *Server) synthesizeConcept(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	concept, err := requireText(req, "concept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	synthesis, err := s.svc.Synthesize(ctx, concept)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(synthesis), nil
}

func (s *Server) runDrill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	concept, err := requireText(req, "concept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	expansion, err := req.RequireString("expansion")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	counts := req.GetIntSlice("word_counts", nil)
	if err := validation.Validate(counts, validation.Length(0, models.MaxDrillWordCounts)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: word_counts %s", apperr.ErrInvalidInput, err.Error())), nil
	}

	summaries, err := s.svc.Drill(ctx, concept, expansion, counts)
	if err != nil {
		return toolError(err), nil
	}
	if summaries == nil {
		summaries = []string{}
	}
	out, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getVaultFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(VaultFormatContract), nil
}

func (s *Server) readVaultFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      VaultFormatResourceURI,
			MIMEType: "text/markdown",
			Text:     VaultFormatContract,
		},
	}, nil
}

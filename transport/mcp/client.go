package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dropfour/server/game/config"
	"github.com/dropfour/server/game/engine"
	"github.com/dropfour/server/game/session"
)

// Client is a thin MCP client that proxies to the REST API. It is read-only
// by construction: games can only be inspected here, never played, and play
// tokens never cross this surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Drop Four",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Drop Four - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Drop Four is a real-time two-player Connect Four server. Games are created
and played over the WebSocket endpoint; this interface only observes them.

AVAILABLE TOOLS:
- list_sessions: List active game sessions
- get_session: Get a session's state and board by token
- list_rule_sets: List available board configurations
- archived_games: List finished games from the archive

Session listings carry watch tokens only. A watch token lets a client
spectate over the WebSocket endpoint but never play.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the state and board of a session by its watch token",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Watch token of the session to inspect",
				},
			},
			Required: []string{"token"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rule_sets",
		Description: "List available board configurations (columns, rows, win length)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRuleSets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "archived_games",
		Description: "List finished games from the archive",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleArchivedGames)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall performs a GET against the REST API and decodes the JSON response.
func (c *Client) apiCall(path string, result interface{}) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Tool handlers

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int            `json:"count"`
		Sessions []session.Info `json:"sessions"`
	}

	if err := c.apiCall("/api/sessions", &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := fmt.Sprintf("%d player(s), %d spectator(s), %d move(s)",
			s.Players, s.Spectators, s.Moves)
		if s.Finished {
			status += ", finished"
		}
		fmt.Fprintf(&b, "- %s (%s, created %s)\n",
			s.WatchToken, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	token, _ := args["token"].(string)
	if token == "" {
		return mcp.NewToolResultError("token is required"), nil
	}

	var info session.Info
	if err := c.apiCall("/api/sessions/"+token, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleListRuleSets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var ruleSets []config.RuleSet
	if err := c.apiCall("/api/rules", &ruleSets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Rule Sets:\n\n")
	for _, rs := range ruleSets {
		fmt.Fprintf(&b, "- %s: %dx%d board, connect %d",
			rs.Name, rs.Columns, rs.Rows, rs.Connect)
		if rs.Description != "" {
			fmt.Fprintf(&b, " (%s)", rs.Description)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleArchivedGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int              `json:"count"`
		Games []session.Record `json:"games"`
	}

	if err := c.apiCall("/api/archive", &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Finished Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		outcome := fmt.Sprintf("player %d won", g.Winner)
		if g.Winner == 0 {
			outcome = "draw"
		}
		fmt.Fprintf(&b, "- %s in %d moves on a %dx%d board (finished %s)\n",
			outcome, g.Moves, g.Columns, g.Rows,
			g.FinishedAt.Format("2006-01-02 15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func formatSessionInfo(info *session.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", info.WatchToken)
	fmt.Fprintf(&b, "Rules: %dx%d board, connect %d\n",
		info.Rules.Columns, info.Rules.Rows, info.Rules.Connect)
	fmt.Fprintf(&b, "Players: %d | Spectators: %d | Moves: %d\n",
		info.Players, info.Spectators, info.Moves)
	fmt.Fprintf(&b, "Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))

	if info.Finished {
		if info.Winner == 0 {
			b.WriteString("Status: finished, draw\n")
		} else {
			fmt.Fprintf(&b, "Status: finished, player %d won\n", info.Winner)
		}
	} else {
		b.WriteString("Status: in progress\n")
	}

	if info.Board != nil {
		b.WriteString("\n")
		b.WriteString(formatBoard(info.Board))
	}

	return b.String()
}

// formatBoard renders the board top row first, the way a player sees it.
// The board is column-major with row 0 at the bottom.
func formatBoard(board [][]engine.Player) string {
	if len(board) == 0 || len(board[0]) == 0 {
		return ""
	}
	columns, rows := len(board), len(board[0])

	var b strings.Builder
	for row := rows - 1; row >= 0; row-- {
		for col := 0; col < columns; col++ {
			switch board[col][row] {
			case engine.Player1:
				b.WriteString("X")
			case engine.Player2:
				b.WriteString("O")
			default:
				b.WriteString(".")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

package mcp

import (
	"github.com/swanstudios/formsight/internal/formanalysis"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server exposing the form-analysis lifecycle tools:
// start a session, stop it with a summary, fetch the latest feedback.
// Used by the main service when mounting MCP at /mcp (internal/server) and by
// the stdio binary (cmd/formsight_mcp).
func NewServer(service *formanalysis.Service) *mcp.Server {
	h := NewHandler(service)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "formsight-analysis",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "start_form_analysis",
		Description: "Starts a real-time exercise form analysis session for a user. Returns the session id and the websocket path for streaming frames. Optional exercise_name selects the analyzer (squat, deadlift, bench_press, overhead_press, plank).",
	}, h.StartFormAnalysisTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "stop_form_analysis",
		Description: "Stops an analysis session and returns its summary: total frames, duration, average form score and the final metrics if any frame was analyzed.",
	}, h.StopFormAnalysisTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_realtime_feedback",
		Description: "Returns the latest computed form metrics, current pose and frame-rate info for an active session, without touching the stream.",
	}, h.GetRealTimeFeedbackTool())

	return s
}

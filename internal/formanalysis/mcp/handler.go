package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/swanstudios/formsight/internal/formanalysis"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type lifecycleService interface {
	Start(ctx context.Context, req formanalysis.StartRequest) (*formanalysis.StartResponse, error)
	Stop(ctx context.Context, sessionID string) *formanalysis.StopResponse
	GetRealTimeFeedback(ctx context.Context, sessionID string) *formanalysis.FeedbackResponse
}

// Handler handles MCP tool requests and responses: parses input, calls the
// lifecycle service, formats the MCP result.
type Handler struct {
	service lifecycleService
}

func NewHandler(service lifecycleService) *Handler {
	return &Handler{
		service: service,
	}
}

// StartFormAnalysisInput is the input for start_form_analysis.
type StartFormAnalysisInput struct {
	UserID       string `json:"user_id" jsonschema:"Id of the user starting the session"`
	ExerciseID   string `json:"exercise_id,omitempty" jsonschema:"Optional exercise id from the workout plan"`
	ExerciseName string `json:"exercise_name,omitempty" jsonschema:"Exercise to analyze (squat, deadlift, bench_press, overhead_press, plank)"`
}

// StartFormAnalysisTool returns the MCP tool handler for start_form_analysis.
func (h *Handler) StartFormAnalysisTool() func(context.Context, *mcp.CallToolRequest, StartFormAnalysisInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in StartFormAnalysisInput) (*mcp.CallToolResult, any, error) {
		if in.UserID == "" {
			return errorResult("user_id is required"), nil, nil
		}

		resp, err := h.service.Start(ctx, formanalysis.StartRequest{
			UserID:       in.UserID,
			ExerciseID:   in.ExerciseID,
			ExerciseName: in.ExerciseName,
		})
		if err != nil {
			if errors.Is(err, formanalysis.ErrModelUnavailable) {
				return errorResult("Pose model unavailable: " + err.Error()), nil, nil
			}
			return errorResult("Error starting session: " + err.Error()), nil, nil
		}

		return jsonResult(resp)
	}
}

// StopFormAnalysisInput is the input for stop_form_analysis.
type StopFormAnalysisInput struct {
	SessionID string `json:"session_id" jsonschema:"Id of the session to stop"`
}

// StopFormAnalysisTool returns the MCP tool handler for stop_form_analysis.
func (h *Handler) StopFormAnalysisTool() func(context.Context, *mcp.CallToolRequest, StopFormAnalysisInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in StopFormAnalysisInput) (*mcp.CallToolResult, any, error) {
		if in.SessionID == "" {
			return errorResult("session_id is required"), nil, nil
		}
		return jsonResult(h.service.Stop(ctx, in.SessionID))
	}
}

// RealTimeFeedbackInput is the input for get_realtime_feedback.
type RealTimeFeedbackInput struct {
	SessionID string `json:"session_id" jsonschema:"Id of the session to fetch feedback for"`
}

// GetRealTimeFeedbackTool returns the MCP tool handler for get_realtime_feedback.
func (h *Handler) GetRealTimeFeedbackTool() func(context.Context, *mcp.CallToolRequest, RealTimeFeedbackInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in RealTimeFeedbackInput) (*mcp.CallToolResult, any, error) {
		if in.SessionID == "" {
			return errorResult("session_id is required"), nil, nil
		}
		return jsonResult(h.service.GetRealTimeFeedback(ctx, in.SessionID))
	}
}

func jsonResult(payload any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error()), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}

// Package main runs the form-analysis MCP server over stdio (for local use).
// The same MCP server is also mounted on the main service at /mcp over HTTP,
// so you can use either: stdio (this cmd) or the service URL (no extra deploy).
package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/swanstudios/formsight/internal/config"
	"github.com/swanstudios/formsight/internal/formanalysis"
	formsightmcp "github.com/swanstudios/formsight/internal/formanalysis/mcp"
	"github.com/swanstudios/formsight/internal/pose"
	"github.com/swanstudios/formsight/internal/sessions"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	model := pose.NewInferenceAPI(cfg.PoseAPIURL, http.DefaultClient)
	store := sessions.NewStore(sessions.StoreParams{
		MaxSessions:    cfg.MaxActiveSessions,
		MaxPoseHistory: cfg.FrameBufferSize,
	})
	service := formanalysis.NewService(store, model, nil)

	// sessions started over stdio have no streaming channel attached; frames
	// must go through the main service's websocket endpoint
	server := formsightmcp.NewServer(service)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}

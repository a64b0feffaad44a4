package server

import (
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockmind/internal/common"
)

// registerRoutes sets up all routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Analysis
	mux.HandleFunc("/analyze_company", s.handleAnalyzeCompany)
	mux.HandleFunc("/api/chart", s.handleChart)

	// Alerts
	mux.HandleFunc("/create_alert", s.handleCreateAlert)
	mux.HandleFunc("/api/alerts/check", s.handleCheckAlerts)
	mux.HandleFunc("/api/alerts", s.handleListAlerts)

	// MCP over Streamable HTTP
	if s.app.MCPServer != nil {
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer,
			mcpserver.WithStateLess(true),
		))
	}

	mux.HandleFunc("/", s.handleIndex)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

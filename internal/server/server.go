// Package server exposes the rule manager and deployment service over HTTP.
// The API mirrors what editor integrations expect: technology listings, rule
// sets, single-rule lookups, file-context resolution, and deploys.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ololo-tratata/cursor-rules/internal/logging"
	"github.com/ololo-tratata/cursor-rules/internal/rules"
)

// Version reported by the root endpoint.
const Version = "1.0.0"

// RuleProvider is the rule-manager contract the API needs.
type RuleProvider interface {
	GetRulesForTechnology(ctx context.Context, technology string) *rules.RuleSet
	GetRulesForFile(ctx context.Context, fileCtx rules.FileContext) *rules.RuleSet
	GetRuleByID(ctx context.Context, ruleID, technology string) (rules.Rule, bool)
}

// Deployer is the deployment contract the API needs.
type Deployer interface {
	DeployRules(targetDir, technology string) error
	DetectProjectType(projectDir string) (string, bool)
}

// Server wires the HTTP routes to the underlying services.
type Server struct {
	Rules    RuleProvider
	Deployer Deployer
	Logger   *logging.AppLogger
}

// NewServer creates a Server over the given services.
func NewServer(rulesProvider RuleProvider, deployer Deployer, logger *logging.AppLogger) *Server {
	return &Server{Rules: rulesProvider, Deployer: deployer, Logger: logger}
}

// Routes returns the full handler stack: routing plus the CORS, request
// logging, and panic recovery middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/technologies", s.handleListTechnologies)
	mux.HandleFunc("GET /api/v1/technologies/{technology}/rules", s.handleGetRules)
	mux.HandleFunc("GET /api/v1/technologies/{technology}/rules/{rule_id}", s.handleGetRule)
	mux.HandleFunc("POST /api/v1/context/rules", s.handleContextRules)
	mux.HandleFunc("POST /api/v1/deploy", s.handleDeploy)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.withRecovery(s.withLogging(withCORS(mux)))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "cursor-rules server",
		"version": Version,
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
}

func (s *Server) handleListTechnologies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rules.Technologies())
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	technology := r.PathValue("technology")
	set := s.Rules.GetRulesForTechnology(r.Context(), technology)
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	technology := r.PathValue("technology")
	ruleID := r.PathValue("rule_id")

	rule, ok := s.Rules.GetRuleByID(r.Context(), ruleID, technology)
	if !ok {
		s.err(w, http.StatusNotFound, "Rule "+ruleID+" not found for "+technology)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleContextRules(w http.ResponseWriter, r *http.Request) {
	var fileCtx rules.FileContext
	if err := json.NewDecoder(r.Body).Decode(&fileCtx); err != nil {
		s.err(w, http.StatusBadRequest, "Invalid file context body")
		return
	}
	if fileCtx.FilePath == "" {
		s.err(w, http.StatusBadRequest, "file_path is required")
		return
	}

	set := s.Rules.GetRulesForFile(r.Context(), fileCtx)
	writeJSON(w, http.StatusOK, set)
}

type deployRequest struct {
	TargetDir  string `json:"target_dir"`
	Technology string `json:"technology,omitempty"`
}

type deployResponse struct {
	Success    bool   `json:"success"`
	Technology string `json:"technology"`
	RulesCount int    `json:"rules_count"`
	TargetDir  string `json:"target_dir"`
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.err(w, http.StatusBadRequest, "Invalid deploy request body")
		return
	}
	if req.TargetDir == "" {
		s.err(w, http.StatusBadRequest, "target_dir is required")
		return
	}

	technology := req.Technology
	if technology == "" {
		detected, ok := s.Deployer.DetectProjectType(req.TargetDir)
		if !ok {
			s.err(w, http.StatusBadRequest,
				"Could not detect project type. Please specify technology parameter.")
			return
		}
		technology = detected
	}

	set := s.Rules.GetRulesForTechnology(r.Context(), technology)
	if set.Total == 0 {
		s.err(w, http.StatusNotFound, "No rules found for technology: "+technology)
		return
	}

	if err := s.Deployer.DeployRules(req.TargetDir, technology); err != nil {
		s.Logger.Error("Deploy failed", "target", req.TargetDir, "technology", technology, "error", err)
		s.err(w, http.StatusInternalServerError, "Failed to deploy rules to "+req.TargetDir)
		return
	}

	writeJSON(w, http.StatusOK, deployResponse{
		Success:    true,
		Technology: technology,
		RulesCount: set.Total,
		TargetDir:  req.TargetDir,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// err writes an error response in the {"detail": ...} shape clients parse.
func (s *Server) err(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

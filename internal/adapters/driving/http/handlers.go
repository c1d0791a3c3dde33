package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/swaggo/swag"

	// Registers the OpenAPI document with swag
	_ "github.com/custodia-labs/ingest-core/docs"
	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ReadyResponse reports backend reachability
// @Description Readiness status with per-backend checks
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks"`
}

// AnalyzeBody is the request body for document analysis
// @Description Document analysis request
type AnalyzeBody struct {
	Content            string `json:"content" example:"Attendees: Ana, Bo. We agreed to adopt Postgres."`
	ExistingArtifactID string `json:"existing_artifact_id,omitempty"`
	DocumentType       string `json:"document_type,omitempty" example:"meeting_notes"`
}

// IDsBody carries a selection of suggestion ids
// @Description Selection of suggestion ids
type IDsBody struct {
	IDs []string `json:"ids"`
}

// KnowledgeSearchBody is the request body for knowledge search
// @Description Knowledge base search request
type KnowledgeSearchBody struct {
	Query string `json:"query" example:"database choice"`
	TopK  int    `json:"top_k,omitempty" example:"5"`
}

// KnowledgeSearchResponse wraps knowledge search matches
// @Description Knowledge base search results
type KnowledgeSearchResponse struct {
	Results []*domain.VectorMatch `json:"results"`
}

// SuggestionListResponse wraps a list of work items
// @Description Work item list
type SuggestionListResponse struct {
	Items []*domain.SuggestionItem `json:"items"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings the database and, when configured, the lock backend
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Checks: map[string]string{}}
	status := http.StatusOK

	check := func(name string, p Pinger) {
		if p == nil {
			return
		}
		if err := p.Ping(r.Context()); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			return
		}
		resp.Checks[name] = "ok"
	}
	check("database", s.db)
	check("lock", s.lock)

	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not available")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// Analysis endpoints

// handleAnalyze godoc
// @Summary      Analyze a document
// @Description  Splits the document, retrieves candidates, classifies every chunk and stores draft suggestions
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        project  path      string       true  "Project ID"
// @Param        request  body      AnalyzeBody  true  "Document"
// @Success      200      {object}  domain.AnalysisResult
// @Failure      400      {object}  ErrorResponse  "Invalid document"
// @Failure      502      {object}  ErrorResponse  "Analysis failed"
// @Failure      503      {object}  ErrorResponse  "Classifier unavailable"
// @Router       /projects/{project}/analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.analyzeTimeout)
	defer cancel()

	result, err := s.analysisService.AnalyzeDocument(ctx, driving.AnalyzeRequest{
		ProjectID:            r.PathValue("project"),
		Content:              body.Content,
		ExistingArtifactID:   body.ExistingArtifactID,
		DocumentTypeOverride: body.DocumentType,
	})
	if err != nil {
		s.writeServiceError(w, err, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Suggestion endpoints

// handleListSuggestions godoc
// @Summary      List work items
// @Description  Lists suggestions, confirmed records, or both
// @Tags         Suggestions
// @Produce      json
// @Security     BearerAuth
// @Param        project  path      string  true   "Project ID"
// @Param        status   query     string  false  "suggestion, confirmed or all"  default(suggestion)
// @Success      200      {object}  SuggestionListResponse
// @Failure      400      {object}  ErrorResponse  "Unknown status filter"
// @Router       /projects/{project}/suggestions [get]
func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	filter := domain.StatusFilter(r.URL.Query().Get("status"))

	items, err := s.suggestionService.List(r.Context(), r.PathValue("project"), filter)
	if err != nil {
		s.writeServiceError(w, err, "failed to list suggestions")
		return
	}
	if items == nil {
		items = []*domain.SuggestionItem{}
	}

	writeJSON(w, http.StatusOK, SuggestionListResponse{Items: items})
}

// handleCreateSuggestion godoc
// @Summary      Create a suggestion
// @Description  Creates a draft work item by hand
// @Tags         Suggestions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        project  path      string                           true  "Project ID"
// @Param        request  body      driving.CreateSuggestionRequest  true  "Draft"
// @Success      201      {object}  domain.SuggestionItem
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Router       /projects/{project}/suggestions [post]
func (s *Server) handleCreateSuggestion(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.suggestionService.Create(r.Context(), r.PathValue("project"), req)
	if err != nil {
		s.writeServiceError(w, err, "failed to create suggestion")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// handleGetSuggestion godoc
// @Summary      Get a work item
// @Tags         Suggestions
// @Produce      json
// @Security     BearerAuth
// @Param        project  path      string  true  "Project ID"
// @Param        id       path      string  true  "Item ID"
// @Success      200      {object}  domain.SuggestionItem
// @Failure      404      {object}  ErrorResponse  "Not found"
// @Router       /projects/{project}/suggestions/{id} [get]
func (s *Server) handleGetSuggestion(w http.ResponseWriter, r *http.Request) {
	item, err := s.suggestionService.Get(r.Context(), r.PathValue("project"), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err, "failed to get suggestion")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleUpdateSuggestion godoc
// @Summary      Edit a suggestion
// @Description  Edits a draft before confirmation. Confirmed records cannot be edited here.
// @Tags         Suggestions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        project  path      string                           true  "Project ID"
// @Param        id       path      string                           true  "Item ID"
// @Param        request  body      driving.UpdateSuggestionRequest  true  "Changes"
// @Success      200      {object}  domain.SuggestionItem
// @Failure      404      {object}  ErrorResponse  "Not found"
// @Failure      409      {object}  ErrorResponse  "Not a suggestion"
// @Router       /projects/{project}/suggestions/{id} [put]
func (s *Server) handleUpdateSuggestion(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.suggestionService.Update(r.Context(), r.PathValue("project"), r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, err, "failed to update suggestion")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleDeleteSuggestion godoc
// @Summary      Delete a work item
// @Tags         Suggestions
// @Security     BearerAuth
// @Param        project  path  string  true  "Project ID"
// @Param        id       path  string  true  "Item ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse  "Not found"
// @Router       /projects/{project}/suggestions/{id} [delete]
func (s *Server) handleDeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	if err := s.suggestionService.Delete(r.Context(), r.PathValue("project"), r.PathValue("id")); err != nil {
		s.writeServiceError(w, err, "failed to delete suggestion")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Confirmation endpoints

// handleConfirmItem godoc
// @Summary      Confirm one suggestion
// @Description  Materializes the source artifact, enrolls it, and moves the item to its confirmed status
// @Tags         Confirmation
// @Produce      json
// @Security     BearerAuth
// @Param        project  path      string  true  "Project ID"
// @Param        id       path      string  true  "Item ID"
// @Success      200      {object}  domain.SuggestionItem
// @Failure      404      {object}  ErrorResponse  "Not found"
// @Failure      409      {object}  ErrorResponse  "Already confirmed or locked"
// @Router       /projects/{project}/suggestions/{id}/confirm [post]
func (s *Server) handleConfirmItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.confirmationService.ConfirmItem(r.Context(), r.PathValue("project"), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err, "failed to confirm suggestion")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleConfirmSelected godoc
// @Summary      Confirm a batch
// @Description  Confirms parents before children. Per-item failures are counted and never abort the batch.
// @Tags         Confirmation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        project  path      string   true  "Project ID"
// @Param        request  body      IDsBody  true  "Selected ids"
// @Success      200      {object}  domain.BatchResult
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Router       /projects/{project}/suggestions/confirm [post]
func (s *Server) handleConfirmSelected(w http.ResponseWriter, r *http.Request) {
	var body IDsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.confirmationService.ConfirmSelected(r.Context(), r.PathValue("project"), body.IDs)
	if err != nil {
		s.writeServiceError(w, err, "failed to confirm suggestions")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRejectSelected godoc
// @Summary      Reject a batch
// @Description  Deletes every selected suggestion
// @Tags         Confirmation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        project  path      string   true  "Project ID"
// @Param        request  body      IDsBody  true  "Selected ids"
// @Success      200      {object}  StatusResponse
// @Failure      409      {object}  ErrorResponse  "A selected item is not a suggestion"
// @Router       /projects/{project}/suggestions/reject [post]
func (s *Server) handleRejectSelected(w http.ResponseWriter, r *http.Request) {
	var body IDsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.confirmationService.RejectSelected(r.Context(), r.PathValue("project"), body.IDs); err != nil {
		s.writeServiceError(w, err, "failed to reject suggestions")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Knowledge endpoints

// handleKnowledgeSearch godoc
// @Summary      Search the knowledge base
// @Description  Similarity search over enrolled artifacts, with keyword fallback when no vector backend is configured
// @Tags         Knowledge
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        project  path      string               true  "Project ID"
// @Param        request  body      KnowledgeSearchBody  true  "Query"
// @Success      200      {object}  KnowledgeSearchResponse
// @Failure      400      {object}  ErrorResponse  "Empty query"
// @Router       /projects/{project}/knowledge/search [post]
func (s *Server) handleKnowledgeSearch(w http.ResponseWriter, r *http.Request) {
	var body KnowledgeSearchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	matches, err := s.knowledgeService.Search(r.Context(), r.PathValue("project"), body.Query, body.TopK)
	if err != nil {
		s.writeServiceError(w, err, "search failed")
		return
	}
	if matches == nil {
		matches = []*domain.VectorMatch{}
	}

	writeJSON(w, http.StatusOK, KnowledgeSearchResponse{Results: matches})
}

// Helper functions

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotSuggestion),
		errors.Is(err, domain.ErrItemLocked),
		errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrAnalysisFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(fallback, "error", err)
		writeError(w, status, fallback)
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

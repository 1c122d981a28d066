package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"codecanvas/internal/export"
	"codecanvas/internal/preview"
	"codecanvas/internal/project"
	"codecanvas/internal/types"
	"codecanvas/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	appCtx     context.Context // background generations outlive the request
	controller *project.Controller
	exporter   *export.Exporter
	hub        *Hub
	logger     *zap.Logger
}

// NewAPIHandler initializes a new API handler with its dependencies and
// connects the event hub to the controller.
func NewAPIHandler(
	appCtx context.Context,
	controller *project.Controller,
	exporter *export.Exporter,
	logger *zap.Logger,
) *APIHandler {
	hub := NewHub(logger)
	hub.Attach(controller)

	return &APIHandler{
		appCtx:     appCtx,
		controller: controller,
		exporter:   exporter,
		hub:        hub,
		logger:     logger,
	}
}

// --- Request/Response Structs ---

type ActiveFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type StateResponse struct {
	Prompt            string           `json:"prompt"`
	Files             []types.FileInfo `json:"files"`
	Active            *ActiveFile      `json:"active"`
	Generating        bool             `json:"generating"`
	Error             string           `json:"error,omitempty"`
	FilesRevision     uint64           `json:"filesRevision"`
	SelectionRevision uint64           `json:"selectionRevision"`
	CanExport         bool             `json:"canExport"`
}

type PromptRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateRequest struct {
	Prompt *string `json:"prompt"` // optional; the stored prompt is used when absent
}

type GenerateResponse struct {
	GenerationID string `json:"generationId"`
}

type CreateFileRequest struct {
	Name string `json:"name" binding:"required"`
}

type SelectFileRequest struct {
	Name string `json:"name" binding:"required"`
}

type ContentRequest struct {
	Content *string `json:"content" binding:"required"`
}

type FormatResponse struct {
	Changed bool        `json:"changed"`
	Active  *ActiveFile `json:"active"`
}

func (h *APIHandler) state() StateResponse {
	st := h.controller.Status()
	snap := h.controller.Store().Snapshot()

	infos := make([]types.FileInfo, 0, len(snap.Files))
	for _, f := range snap.Files {
		infos = append(infos, types.FileInfo{Name: f.Name, Type: utils.DetermineFileType(f.Name)})
	}

	return StateResponse{
		Prompt:            st.Prompt,
		Files:             infos,
		Active:            activeOf(snap),
		Generating:        st.Generating,
		Error:             st.Error,
		FilesRevision:     snap.FilesRevision,
		SelectionRevision: snap.SelectionRev,
		CanExport:         len(snap.Files) > 0,
	}
}

func activeOf(snap project.Snapshot) *ActiveFile {
	f, ok := snap.ActiveFile()
	if !ok {
		return nil
	}
	return &ActiveFile{Name: f.Name, Content: f.Content}
}

// GetState returns the whole UI state.
func (h *APIHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.state())
}

// UpdatePrompt stores the prompt text without generating.
func (h *APIHandler) UpdatePrompt(c *gin.Context) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	h.controller.SetPrompt(req.Prompt)
	c.Status(http.StatusNoContent)
}

// Generate starts a generation from the given or stored prompt.
func (h *APIHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
	}
	prompt := h.controller.Prompt()
	if req.Prompt != nil {
		prompt = *req.Prompt
	}

	id, err := h.controller.Submit(h.appCtx, prompt)
	switch {
	case errors.Is(err, project.ErrBlankPrompt):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please describe the website you want to generate."})
		return
	case errors.Is(err, project.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "A website is already being generated."})
		return
	case err != nil:
		h.logger.Error("submit generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start generation"})
		return
	}

	c.JSON(http.StatusAccepted, GenerateResponse{GenerationID: id})
}

// DismissError clears the global error banner.
func (h *APIHandler) DismissError(c *gin.Context) {
	h.controller.DismissError()
	c.Status(http.StatusNoContent)
}

// CreateFile adds an empty file and selects it.
func (h *APIHandler) CreateFile(c *gin.Context) {
	var req CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	err := h.controller.Store().Create(strings.TrimSpace(req.Name))
	var vErr *project.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.state())
}

// SelectFile changes the active file.
func (h *APIHandler) SelectFile(c *gin.Context) {
	var req SelectFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := h.controller.Store().Select(req.Name); err != nil {
		if errors.Is(err, project.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("File %q not found", req.Name)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, activeOf(h.controller.Store().Snapshot()))
}

// UpdateActiveContent replaces the active file's content as the user types.
func (h *APIHandler) UpdateActiveContent(c *gin.Context) {
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if _, ok := h.controller.Store().ActiveTicket(); !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "No file is selected"})
		return
	}
	h.controller.EditActive(*req.Content)
	c.Status(http.StatusNoContent)
}

// FormatActive handles the editor losing focus.
func (h *APIHandler) FormatActive(c *gin.Context) {
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if _, ok := h.controller.Store().ActiveTicket(); !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "No file is selected"})
		return
	}
	changed := h.controller.FormatActive(c.Request.Context(), *req.Content)
	c.JSON(http.StatusOK, FormatResponse{Changed: changed, Active: activeOf(h.controller.Store().Snapshot())})
}

// Preview serves the composed document under a sandbox CSP.
func (h *APIHandler) Preview(c *gin.Context) {
	doc := preview.Compose(h.controller.Store().Snapshot().Files)
	c.Header("Content-Security-Policy", "sandbox "+preview.SandboxPolicy)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}

// Export streams the project as a zip download.
func (h *APIHandler) Export(c *gin.Context) {
	files := h.controller.Store().Snapshot().Files

	var buf bytes.Buffer
	if err := h.exporter.Export(&buf, files); err != nil {
		if errors.Is(err, export.ErrExportUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not download. Archiving is not available."})
			return
		}
		h.logger.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not download the project."})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.ArchiveName))
	c.Data(http.StatusOK, h.exporter.ContentType(), buf.Bytes())
}

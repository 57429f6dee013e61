package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/webforge-ai/webforge/api/rest/v1"
	"github.com/webforge-ai/webforge/api/rest/v1/schemas"
	"github.com/webforge-ai/webforge/internal/export"
	"github.com/webforge-ai/webforge/internal/runner"
)

type ProjectHandler struct {
	registry *runner.Registry
	exporter *export.Service
}

func NewProjectHandler(registry *runner.Registry, exporter *export.Service) *ProjectHandler {
	return &ProjectHandler{registry: registry, exporter: exporter}
}

func (h *ProjectHandler) HandleHealth(c *gin.Context) error {
	c.JSON(http.StatusOK, schemas.HealthResponse{
		Status:       "ok",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Projects:     h.registry.Count(),
		ActiveBuilds: h.registry.ActiveBuilds(),
	})
	return nil
}

func (h *ProjectHandler) HandleCreate(c *gin.Context) error {
	var req schemas.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return v1.APIError{
			Code: http.StatusBadRequest,
			Err:  "Name and files are required",
		}
	}
	if req.Framework == "" {
		req.Framework = "nextjs"
	}

	project, err := h.registry.Create(c.Request.Context(), req.Name, req.Files, req.Framework)
	if err != nil {
		if errors.Is(err, runner.ErrCapacityExceeded) {
			return v1.APIError{
				Code: http.StatusTooManyRequests,
				Err:  "Maximum number of projects reached",
			}
		}
		return v1.APIError{
			Code: http.StatusInternalServerError,
			Err:  "Failed to create project",
		}
	}

	c.JSON(http.StatusOK, project)
	return nil
}

func (h *ProjectHandler) HandleGet(c *gin.Context) error {
	project, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return notFound(err)
	}
	c.JSON(http.StatusOK, project)
	return nil
}

func (h *ProjectHandler) HandleUpdateFiles(c *gin.Context) error {
	var req schemas.UpdateFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return v1.APIError{
			Code: http.StatusBadRequest,
			Err:  "Files are required",
		}
	}

	project, err := h.registry.UpdateFiles(c.Request.Context(), c.Param("id"), req.Files)
	if err != nil {
		return notFound(err)
	}
	c.JSON(http.StatusOK, project)
	return nil
}

func (h *ProjectHandler) HandleDelete(c *gin.Context) error {
	id := c.Param("id")
	if err := h.registry.Delete(id); err != nil {
		return notFound(err)
	}
	// Best effort: a published archive must not outlive its project.
	if err := h.exporter.Remove(c.Request.Context(), id); err != nil {
		slog.Warn("failed to remove published archive", "project", id, "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
	return nil
}

func (h *ProjectHandler) HandleList(c *gin.Context) error {
	c.JSON(http.StatusOK, h.registry.List())
	return nil
}

// HandleExport archives a project's files. With object storage configured
// the archive is published and its key returned; otherwise the zip streams
// back as an attachment.
func (h *ProjectHandler) HandleExport(c *gin.Context) error {
	project, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return notFound(err)
	}

	if h.exporter.HasStorage() {
		key, err := h.exporter.Publish(c.Request.Context(), project)
		if err != nil {
			return v1.APIError{
				Code: http.StatusInternalServerError,
				Err:  "Failed to export project",
			}
		}
		c.JSON(http.StatusOK, schemas.ExportResponse{Key: key})
		return nil
	}

	data, err := h.exporter.Archive(project)
	if err != nil {
		return v1.APIError{
			Code: http.StatusInternalServerError,
			Err:  "Failed to export project",
		}
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.Name+".zip"))
	c.Data(http.StatusOK, "application/zip", data)
	return nil
}

// HandleDownloadArchive streams a previously published archive back from
// object storage.
func (h *ProjectHandler) HandleDownloadArchive(c *gin.Context) error {
	project, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return notFound(err)
	}

	data, ok, err := h.exporter.Fetch(c.Request.Context(), project.ID)
	if err != nil {
		return v1.APIError{
			Code: http.StatusInternalServerError,
			Err:  "Failed to fetch archive",
		}
	}
	if !ok {
		return v1.APIError{
			Code: http.StatusNotFound,
			Err:  "No archive published for this project",
		}
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.Name+".zip"))
	c.Data(http.StatusOK, "application/zip", data)
	return nil
}

func notFound(err error) error {
	if errors.Is(err, runner.ErrNotFound) {
		return v1.APIError{
			Code: http.StatusNotFound,
			Err:  "Project not found",
		}
	}
	return v1.APIError{
		Code: http.StatusInternalServerError,
		Err:  err.Error(),
	}
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/webforge-ai/webforge/api/rest/v1"
	"github.com/webforge-ai/webforge/api/rest/v1/schemas"
	"github.com/webforge-ai/webforge/internal/agent"
)

type GenerateHandler struct {
	agent *agent.Agent
}

func NewGenerateHandler(a *agent.Agent) *GenerateHandler {
	return &GenerateHandler{agent: a}
}

func (h *GenerateHandler) HandleGenerate(c *gin.Context) error {
	var req schemas.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return v1.APIError{
			Code: http.StatusBadRequest,
			Err:  "Prompt is required",
		}
	}

	result, err := h.agent.GenerateCode(c.Request.Context(), agent.CodeGenerationRequest{
		Prompt:    req.Prompt,
		Framework: req.Framework,
		Template:  req.Template,
		Features:  req.Features,
	})
	if err != nil {
		if errors.Is(err, agent.ErrNoProviderAvailable) {
			return v1.APIError{
				Code: http.StatusInternalServerError,
				Err:  "No code generation provider is configured",
			}
		}
		return v1.APIError{
			Code: http.StatusInternalServerError,
			Err:  "Failed to generate application",
		}
	}

	c.JSON(http.StatusOK, schemas.GenerateResponse{
		Success: true,
		Project: schemas.GeneratedProject{
			Files:       result.Files,
			Description: result.Description,
			Features:    result.Features,
		},
		Timestamp: result.Timestamp,
	})
	return nil
}

func (h *GenerateHandler) HandleChat(c *gin.Context) error {
	var req schemas.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return v1.APIError{
			Code: http.StatusBadRequest,
			Err:  "Message is required",
		}
	}

	reply, err := h.agent.Chat(c.Request.Context(), req.Message, req.Context)
	if err != nil {
		return v1.APIError{
			Code: http.StatusInternalServerError,
			Err:  "Failed to process chat request",
		}
	}

	c.JSON(http.StatusOK, schemas.ChatResponse{
		Success:   true,
		Response:  reply,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

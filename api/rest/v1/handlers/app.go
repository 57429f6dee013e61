package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	v1 "github.com/webforge-ai/webforge/api/rest/v1"
	"github.com/webforge-ai/webforge/api/rest/v1/schemas"
	"github.com/webforge-ai/webforge/internal/models"
	"github.com/webforge-ai/webforge/internal/repository"
)

// AppHandler serves the app/chat metadata CRUD backed by the relational
// store. The core never depends on these routes; they exist only when a
// database is configured.
type AppHandler struct {
	apps  repository.AppRepository
	chats repository.ChatRepository
}

func NewAppHandler(apps repository.AppRepository, chats repository.ChatRepository) *AppHandler {
	return &AppHandler{apps: apps, chats: chats}
}

func (h *AppHandler) HandleListApps(c *gin.Context) error {
	apps, err := h.apps.GetAll(c.Request.Context())
	if err != nil {
		return v1.APIError{Code: http.StatusInternalServerError, Err: "Failed to fetch apps"}
	}
	c.JSON(http.StatusOK, gin.H{"apps": apps})
	return nil
}

func (h *AppHandler) HandleCreateApp(c *gin.Context) error {
	var req schemas.CreateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return v1.APIError{Code: http.StatusBadRequest, Err: "App name is required"}
	}
	if req.TemplateID == "" {
		req.TemplateID = "default"
	}

	app, err := h.apps.Create(c.Request.Context(), &models.App{
		Name:       req.Name,
		Path:       slugify(req.Name),
		TemplateID: req.TemplateID,
	})
	if err != nil {
		return v1.APIError{Code: http.StatusInternalServerError, Err: "Failed to create app"}
	}
	c.JSON(http.StatusOK, gin.H{"app": app})
	return nil
}

func (h *AppHandler) HandleGetApp(c *gin.Context) error {
	id, err := parseAppID(c.Param("id"))
	if err != nil {
		return v1.APIError{Code: http.StatusBadRequest, Err: "Invalid app ID"}
	}
	app, err := h.apps.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return v1.APIError{Code: http.StatusNotFound, Err: "App not found"}
		}
		return v1.APIError{Code: http.StatusInternalServerError, Err: "Failed to fetch app"}
	}
	c.JSON(http.StatusOK, app)
	return nil
}

func (h *AppHandler) HandleDeleteApp(c *gin.Context) error {
	id, err := parseAppID(c.Param("id"))
	if err != nil {
		return v1.APIError{Code: http.StatusBadRequest, Err: "Invalid app ID"}
	}
	if err := h.apps.Delete(c.Request.Context(), id); err != nil {
		return v1.APIError{Code: http.StatusInternalServerError, Err: "Failed to delete app"}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
	return nil
}

func (h *AppHandler) HandleListChats(c *gin.Context) error {
	ctx := c.Request.Context()
	if raw := c.Query("appId"); raw != "" {
		appID, err := parseAppID(raw)
		if err != nil {
			return v1.APIError{Code: http.StatusBadRequest, Err: "Invalid app ID"}
		}
		chats, err := h.chats.FindByAppID(ctx, appID)
		if err != nil {
			return v1.APIError{Code: http.StatusInternalServerError, Err: "Failed to fetch chats"}
		}
		c.JSON(http.StatusOK, chats)
		return nil
	}

	chats, err := h.chats.GetAll(ctx)
	if err != nil {
		return v1.APIError{Code: http.StatusInternalServerError, Err: "Failed to fetch chats"}
	}
	c.JSON(http.StatusOK, chats)
	return nil
}

func (h *AppHandler) HandleCreateChat(c *gin.Context) error {
	var req schemas.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return v1.APIError{Code: http.StatusBadRequest, Err: "App ID is required"}
	}

	if _, err := h.apps.FindByID(c.Request.Context(), req.AppID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return v1.APIError{Code: http.StatusNotFound, Err: "App not found"}
		}
		return v1.APIError{Code: http.StatusInternalServerError, Err: "Failed to create chat"}
	}

	chat, err := h.chats.Create(c.Request.Context(), &models.Chat{AppID: req.AppID})
	if err != nil {
		return v1.APIError{Code: http.StatusInternalServerError, Err: "Failed to create chat"}
	}
	c.JSON(http.StatusOK, chat)
	return nil
}

func parseAppID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

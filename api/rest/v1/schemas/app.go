package schemas

// CreateAppRequest is the body for POST /apps.
type CreateAppRequest struct {
	Name       string `json:"name" binding:"required"`
	TemplateID string `json:"templateId"`
}

// CreateChatRequest is the body for POST /chats.
type CreateChatRequest struct {
	AppID uint `json:"appId" binding:"required"`
}

package schemas

// CreateProjectRequest is the body for POST /projects.
type CreateProjectRequest struct {
	Name      string            `json:"name" binding:"required"`
	Files     map[string]string `json:"files" binding:"required"`
	Framework string            `json:"framework" binding:"omitempty,oneof=nextjs vite svelte astro"`
}

// UpdateFilesRequest is the body for PUT /projects/:id/files.
type UpdateFilesRequest struct {
	Files map[string]string `json:"files" binding:"required"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	Projects     int    `json:"projects"`
	ActiveBuilds int    `json:"activeBuilds"`
}

type ExportResponse struct {
	Key string `json:"key"`
}

package views

import "tracker/internal/models"

// ProjectWrite is the body accepted by project create and update.
// Fields are Optional so an explicit null can be told apart from an
// absent key.
type ProjectWrite struct {
	Name        models.Optional[string] `json:"name"`
	Description models.Optional[string] `json:"description"`
}

// TaskWrite is the body accepted by task create and update. ProjectID and
// AssignedToID are write-only: responses expand them to nested objects.
type TaskWrite struct {
	Title        models.Optional[string]      `json:"title"`
	Description  models.Optional[string]      `json:"description"`
	ProjectID    models.Optional[int64]       `json:"project_id"`
	AssignedToID models.Optional[int64]       `json:"assigned_to_id"`
	Status       models.Optional[string]      `json:"status"`
	Priority     models.Optional[string]      `json:"priority"`
	DueDate      models.Optional[models.Date] `json:"due_date"`
}

// RegisterWrite is the body of the registration endpoint.
type RegisterWrite struct {
	Username string `json:"username" binding:"required,max=150,username"`
	Password string `json:"password" binding:"required"`
}

// TokenWrite is the body of the token endpoint.
type TokenWrite struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshWrite is the body of the token refresh endpoint.
type RefreshWrite struct {
	Refresh string `json:"refresh" binding:"required"`
}

package domain

import "time"

// Audit actions.
const (
	ActionLogin  = "LOGIN"
	ActionLogout = "LOGOUT"
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Audit resource types.
const (
	ResourceAuth     = "auth"
	ResourceUser     = "user"
	ResourceDocument = "document"
)

// OperationLog is an immutable audit record of a mutating action.
type OperationLog struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   *int64    `json:"resource_id"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
	CreatedAt    time.Time `json:"created_at"`
}

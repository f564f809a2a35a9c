package handler

import "time"

// envelope is the success wrapper used by every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// errorResponse documents the error envelope rendered by the HTTP error handler.
type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Data    any    `json:"data"`
	Message string `json:"message" example:"Invalid credentials"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type loginData struct {
	Avatar       string   `json:"avatar"`
	Username     string   `json:"username"`
	Nickname     string   `json:"nickname"`
	Roles        []string `json:"roles"`
	Permissions  []string `json:"permissions"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	Expires      string   `json:"expires" example:"2030/10/30 00:00:00"`
}

type refreshData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Expires      string `json:"expires"`
}

type meData struct {
	ID          int64      `json:"id"`
	Avatar      string     `json:"avatar"`
	Username    string     `json:"username"`
	Nickname    string     `json:"nickname"`
	Email       string     `json:"email"`
	Roles       []string   `json:"roles"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login"`
}

// --- Users ---

type createUserRequest struct {
	Username string   `json:"username" validate:"required,max=50"`
	Password string   `json:"password" validate:"required,min=6"`
	Email    string   `json:"email"    validate:"required,email"`
	Nickname string   `json:"nickname" validate:"required,max=50"`
	Roles    []string `json:"roles"    validate:"omitempty,dive,required"`
}

type updateUserRequest struct {
	Email    *string  `json:"email"    validate:"omitempty,email"`
	Nickname *string  `json:"nickname" validate:"omitempty,max=50"`
	Avatar   *string  `json:"avatar"   validate:"omitempty,url"`
	Roles    []string `json:"roles"    validate:"omitempty,dive,required"`
}

type userResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Nickname    string     `json:"nickname"`
	Avatar      string     `json:"avatar"`
	Roles       []string   `json:"roles"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login"`
}

type userListResponse struct {
	Total int64          `json:"total"`
	Items []userResponse `json:"items"`
}

type userStatusData struct {
	IsActive bool `json:"is_active"`
}

// --- Operation logs ---

type operationLogResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   *int64    `json:"resource_id"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
	CreatedAt    time.Time `json:"created_at"`
}

type operationLogListResponse struct {
	Total int64                  `json:"total"`
	Items []operationLogResponse `json:"items"`
}

type deleteBatchData struct {
	Deleted int64 `json:"deleted"`
}

// --- Documents ---

type createDocumentRequest struct {
	Title       string `json:"title"        validate:"required,max=255"`
	Content     string `json:"content"`
	IsPublished bool   `json:"is_published"`
}

type updateDocumentRequest struct {
	Title       *string `json:"title"        validate:"omitempty,max=255"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"is_published"`
}

type documentResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	AuthorID    int64     `json:"author_id"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type documentListResponse struct {
	Total int64              `json:"total"`
	Items []documentResponse `json:"items"`
}

package handler

import (
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

// --- Domain → Response ---

func toUserResponse(u *domain.Identity) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Nickname:    u.Nickname,
		Avatar:      u.Avatar,
		Roles:       nonNil(u.Roles),
		Permissions: nonNil(u.Permissions),
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}

func toUserListResponse(list *ports.UserList) userListResponse {
	items := make([]userResponse, 0, len(list.Items))
	for _, u := range list.Items {
		items = append(items, toUserResponse(u))
	}
	return userListResponse{Total: list.Total, Items: items}
}

func toMeData(u *domain.Identity) meData {
	return meData{
		ID:          u.ID,
		Avatar:      u.Avatar,
		Username:    u.Username,
		Nickname:    u.Nickname,
		Email:       u.Email,
		Roles:       nonNil(u.Roles),
		Permissions: nonNil(u.Permissions),
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}

func toLoginData(res *ports.LoginResult) loginData {
	return loginData{
		Avatar:       res.Identity.Avatar,
		Username:     res.Identity.Username,
		Nickname:     res.Identity.Nickname,
		Roles:        nonNil(res.Identity.Roles),
		Permissions:  nonNil(res.Identity.Permissions),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Expires:      res.Expires,
	}
}

func toOperationLogResponse(l *domain.OperationLog) operationLogResponse {
	return operationLogResponse{
		ID:           l.ID,
		UserID:       l.UserID,
		Action:       l.Action,
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		Description:  l.Description,
		IPAddress:    l.IPAddress,
		CreatedAt:    l.CreatedAt,
	}
}

func toOperationLogListResponse(list *ports.OperationLogList) operationLogListResponse {
	items := make([]operationLogResponse, 0, len(list.Items))
	for _, l := range list.Items {
		items = append(items, toOperationLogResponse(l))
	}
	return operationLogListResponse{Total: list.Total, Items: items}
}

func toDocumentResponse(d *domain.Document) documentResponse {
	return documentResponse{
		ID:          d.ID,
		Title:       d.Title,
		Content:     d.Content,
		AuthorID:    d.AuthorID,
		IsPublished: d.IsPublished,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDocumentListResponse(list *ports.DocumentList) documentListResponse {
	items := make([]documentResponse, 0, len(list.Items))
	for _, d := range list.Items {
		items = append(items, toDocumentResponse(d))
	}
	return documentListResponse{Total: list.Total, Items: items}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

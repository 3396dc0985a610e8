package handler

type contextKey string

const (
	RoleCtxKey   contextKey = "role"
	UserIDCtxKey contextKey = "userID"
)

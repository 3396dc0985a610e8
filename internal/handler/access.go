package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// 访问管理只开放给管理员，见 RegisterRoutes

func (h *Handler) GetAccessList(w http.ResponseWriter, r *http.Request) {
	records, err := h.repository.GetAllAccessRecords()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Список пользователей", records)
}

func (h *Handler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   int64  `json:"userID" validate:"required"`
		Username string `json:"username" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.GrantAccess(req.UserID, req.Username, h.callerID(r)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.InsertAuditLog(h.callerID(r), "", fmt.Sprintf("выдал доступ пользователю %d (%s)", req.UserID, req.Username)); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "Доступ выдан", nil)
}

func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64 `json:"userID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 禁止收回管理员自己的访问权限
	if h.repository.IsAdmin(req.UserID) {
		h.errorResponse(w, r, "Нельзя отозвать доступ администратора")
		return
	}

	if err := h.repository.RevokeAccess(req.UserID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.InsertAuditLog(h.callerID(r), "", fmt.Sprintf("отозвал доступ у пользователя %d", req.UserID)); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "Доступ отозван", nil)
}

func (h *Handler) GetDirectors(w http.ResponseWriter, r *http.Request) {
	directors, err := h.repository.GetAllDirectors()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Список руководителей", directors)
}

func (h *Handler) AddDirector(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64 `json:"userID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.AddDirector(req.UserID, h.callerID(r)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.InsertAuditLog(h.callerID(r), "", fmt.Sprintf("назначил руководителя %d", req.UserID)); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "Руководитель назначен", nil)
}

func (h *Handler) RemoveDirector(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Неверный ID пользователя")
		return
	}

	if err := h.repository.RemoveDirector(userID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.InsertAuditLog(h.callerID(r), "", fmt.Sprintf("снял руководителя %d", userID)); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "Руководитель снят", nil)
}

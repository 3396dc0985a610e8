package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/photon27/duty-bot/backend/internal/domain"
)

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.repository.GetUser(h.callerID(r))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Профиль не найден")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Профиль", user)
}

func (h *Handler) UpdateMyEmployeeName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeName string `json:"employeeName" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 绑定的名字必须与花名册完全一致（区分大小写），
	// 否则统计查询会静默返回空结果
	if !slices.Contains(h.engine.Roster(), req.EmployeeName) {
		h.errorResponse(w, r, "Такого сотрудника нет в списке")
		return
	}

	if err := h.repository.UpdateEmployeeName(h.callerID(r), req.EmployeeName); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.InsertAuditLog(h.callerID(r), "", fmt.Sprintf("привязал сотрудника %q", req.EmployeeName)); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "Сотрудник привязан", nil)
}

func (h *Handler) UpdateMyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateEmail(h.callerID(r), req.Email); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Почта сохранена", nil)
}

func (h *Handler) GetMySettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repository.GetUserSettings(h.callerID(r))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// 没有记录视为默认设置
			settings = &domain.UserSettings{UserID: h.callerID(r)}
		default:
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "Настройки", settings)
}

func (h *Handler) UpdateMySettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RemindBeforeHour *bool   `json:"remindBeforeHour"`
		DailyRemindTime  *string `json:"dailyRemindTime"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.DailyRemindTime != nil {
		if _, err := time.Parse("15:04", *req.DailyRemindTime); err != nil {
			h.errorResponse(w, r, "Неверный формат времени, ожидается HH:MM")
			return
		}
	}

	if err := h.repository.UpdateUserSettings(h.callerID(r), req.RemindBeforeHour, req.DailyRemindTime); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Настройки сохранены", nil)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/photon27/duty-bot/backend/internal/domain"
	"github.com/photon27/duty-bot/backend/internal/schedule"
)

// 查询接口全部只读，数据缺失一律返回空结果而不是错误

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "Список сотрудников", h.engine.Roster())
}

func parseDateParam(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(chi.URLParam(r, "date"))
	if err != nil {
		h.errorResponse(w, r, "Неверный формат даты, ожидается YYYY-MM-DD")
		return
	}

	h.successResponse(w, r, "Расписание на день", h.engine.Day(date))
}

func (h *Handler) GetMerged(w http.ResponseWriter, r *http.Request) {
	employee := r.URL.Query().Get("employee")
	if employee == "" {
		h.errorResponse(w, r, "Не указан сотрудник")
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		h.errorResponse(w, r, "Неверный формат даты, ожидается YYYY-MM-DD")
		return
	}

	h.successResponse(w, r, "Смены сотрудника", h.engine.Merged(employee, date))
}

func (h *Handler) GetDutyNow(w http.ResponseWriter, r *http.Request) {
	duty := h.engine.DutyNow()
	if duty == nil {
		h.successResponse(w, r, "Сейчас никто не дежурит", nil)
		return
	}

	h.successResponse(w, r, "Текущий дежурный", duty)
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if startParam := r.URL.Query().Get("start"); startParam != "" {
		var err error
		if start, err = parseDateParam(startParam); err != nil {
			h.errorResponse(w, r, "Неверный формат даты, ожидается YYYY-MM-DD")
			return
		}
	}

	employee := r.URL.Query().Get("employee")
	h.successResponse(w, r, "Расписание на неделю", h.engine.Week(start, employee))
}

func (h *Handler) GetAvailableMonths(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "Доступные месяцы", h.engine.AvailableMonths())
}

func parseMonthParams(r *http.Request) (int, int, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

func (h *Handler) GetDepartmentStats(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseMonthParams(r)
	if !ok {
		h.errorResponse(w, r, "Неверно указан месяц")
		return
	}

	h.successResponse(w, r, "Статистика отдела", h.engine.DepartmentStats(year, month))
}

func (h *Handler) GetEmployeeMonthStats(w http.ResponseWriter, r *http.Request) {
	employee := r.URL.Query().Get("name")
	if employee == "" {
		h.errorResponse(w, r, "Не указан сотрудник")
		return
	}

	year, month, ok := parseMonthParams(r)
	if !ok {
		h.errorResponse(w, r, "Неверно указан месяц")
		return
	}

	stats := h.engine.EmployeeMonthStats(employee, year, month)

	h.successResponse(w, r, "Статистика сотрудника", struct {
		*domain.EmployeeMonthStats
		PayDate string `json:"payDate"`
	}{
		EmployeeMonthStats: stats,
		PayDate:            schedule.PayDate(year, month).Format("2006-01-02"),
	})
}

func (h *Handler) ReloadSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Reload(); err != nil {
		switch {
		case errors.Is(err, schedule.ErrSourceUnavailable):
			// 旧索引保持生效
			h.errorResponse(w, r, "Файл графика недоступен, данные не обновлены")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.InsertAuditLog(h.callerID(r), "", "перезагрузил график"); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "График обновлён", nil)
}

package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ru_translations "github.com/go-playground/validator/v10/translations/ru"
	"github.com/photon27/duty-bot/backend/internal/config"
	"github.com/photon27/duty-bot/backend/internal/domain"
	"github.com/photon27/duty-bot/backend/internal/repository"
	"github.com/photon27/duty-bot/backend/internal/schedule"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	engine     *schedule.Engine
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, engine *schedule.Engine) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// 校验错误的提示语言跟随产品语言
	ru := ru.New()
	uni := ut.New(ru, ru)
	trans, _ := uni.GetTranslator("ru")
	if err := ru_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		engine:     engine,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/roster", h.GetRoster)
			r.Get("/day/{date}", h.GetDay)
			r.Get("/merged", h.GetMerged)
			r.Get("/duty-now", h.GetDutyNow)
			r.Get("/week", h.GetWeek)
			r.Get("/months", h.GetAvailableMonths)
			r.Get("/stats/employee", h.GetEmployeeMonthStats)
			// 部门口径的统计和重载只开放给负责人和管理员
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleDirector})).Get("/stats/department", h.GetDepartmentStats)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleDirector})).Post("/reload", h.ReloadSchedule)
		})

		r.Route("/access", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/users", h.GetAccessList)
			r.Post("/grant", h.GrantAccess)
			r.Post("/revoke", h.RevokeAccess)
			r.Get("/directors", h.GetDirectors)
			r.Post("/directors", h.AddDirector)
			r.Delete("/directors/{id}", h.RemoveDirector)
		})

		r.Route("/my", func(r chi.Router) {
			r.Get("/profile", h.GetMyProfile)
			r.Patch("/employee-name", h.UpdateMyEmployeeName)
			r.Patch("/email", h.UpdateMyEmail)
			r.Get("/settings", h.GetMySettings)
			r.Patch("/settings", h.UpdateMySettings)
		})
	})
}

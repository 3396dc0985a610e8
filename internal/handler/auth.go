package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/photon27/duty-bot/backend/internal/domain"
)

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// resolveRole 做静态的特权身份判定：
// 配置中的管理员 ID、负责人表、访问名单，三者都未命中则没有权限
// 除此之外没有任何认证机制（机器人前端传入的就是消息平台的用户 ID）
func (h *Handler) resolveRole(userID int64) (domain.Role, bool, error) {
	if h.repository.IsAdmin(userID) {
		return domain.RoleAdmin, true, nil
	}

	isDirector, err := h.repository.IsDirector(userID)
	if err != nil {
		return "", false, err
	}
	if isDirector {
		return domain.RoleDirector, true, nil
	}

	hasAccess, err := h.repository.CheckAccess(userID)
	if err != nil {
		return "", false, err
	}
	if hasAccess {
		return domain.RoleUser, true, nil
	}

	return "", false, nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
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

	role, ok, err := h.resolveRole(req.UserID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "У вас нет доступа к боту")
		return
	}

	// 登录即落一条用户资料，员工绑定保持原值
	user := &domain.BotUser{
		UserID:   req.UserID,
		Username: req.Username,
	}
	if err := h.repository.SaveUser(user); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 生成 JWT
	expiration := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(req.UserID, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通过 http-only 的 cookie 返回给客户端
	cookie := &http.Cookie{
		Name:     "__duty_bot_token",
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)

	if err := h.repository.InsertAuditLog(req.UserID, req.Username, "вошёл в систему"); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "Вход выполнен", map[string]any{
		"role": role,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    "__duty_bot_token",
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, "Выход выполнен", nil)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/marketplace/internal/service"
)

type AuthHTTP struct {
	S            service.AuthService
	Users        service.UserService
	SessionTTL   time.Duration
	SecureCookie bool
}

func NewAuthHTTP(s service.AuthService, users service.UserService, ttl time.Duration, secure bool) *AuthHTTP {
	return &AuthHTTP{S: s, Users: users, SessionTTL: ttl, SecureCookie: secure}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHTTP) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad json")
		return
	}
	u, err := h.S.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserDTO(u))
}

func (h *AuthHTTP) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad json")
		return
	}
	tok, u, err := h.S.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	// cookie + JSON token
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, tok, int(h.SessionTTL.Seconds()), "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"token": tok, "token_type": "Bearer", "user": toUserDTO(u)})
}

func (h *AuthHTTP) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHTTP) Me(c *gin.Context) {
	p := principal(c)
	u, err := h.Users.Get(c.Request.Context(), p.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(u))
}

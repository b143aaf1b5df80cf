package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/memento-app/memento-auth/internal/pkg/response"
	"github.com/memento-app/memento-auth/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	DOB      string `json:"dob" binding:"required"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if _, err := time.Parse("2006-01-02", req.DOB); err != nil {
		response.Error(c, http.StatusBadRequest, "dob must be an ISO-8601 date (YYYY-MM-DD)")
		return
	}
	if err := h.auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password, req.DOB); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	token, err := h.auth.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		response.Error(c, http.StatusBadRequest, "email query parameter is required")
		return
	}
	profile, err := h.auth.Profile(c.Request.Context(), email)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, profile)
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/apperr"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("request body must be valid JSON"))
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user registered successfully",
		"user":    user,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("request body must be valid JSON"))
		return
	}
	if req.Username == "" || req.Password == "" {
		fail(c, apperr.Validationf("username and password are required"))
		return
	}

	user, tokens, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "login successful",
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user":          user,
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		fail(c, apperr.Auth("refresh token is missing"))
		return
	}

	access, err := s.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "token refreshed",
		"access_token": access,
	})
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": mustUser(c)})
}

package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
)

// contextUserKey is where requireAuth stores the resolved caller.
const contextUserKey = "currentUser"

// requestLogger logs one line per request with method, path, status and
// duration, plus the caller id once auth has resolved it.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if user, ok := currentUser(c); ok {
			attrs = append(attrs, "user_id", user.ID)
		}
		s.logger.Info("request", attrs...)
	}
}

// errorMapper converts errors attached by handlers into the JSON error
// envelope. Unexpected errors are logged server-side and reported as a
// generic 500 so internals never leak.
func (s *Server) errorMapper() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		appErr := apperr.From(c.Errors.Last().Err)
		if appErr.Kind == apperr.KindInternal {
			s.logger.Error("unhandled error",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"err", appErr.Unwrap(),
			)
		}
		c.JSON(appErr.Status(), gin.H{"error": appErr.Message})
	}
}

// corsMiddleware allows the configured frontend origins.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requireAuth resolves the bearer token to an active user and makes it
// available to the handler. Everything downstream works with the
// resolved identity, never with the raw token.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWith(c, apperr.Auth("authorization token is missing"))
			return
		}

		user, err := s.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func currentUser(c *gin.Context) (*model.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}

// mustUser returns the authenticated caller; requireAuth guarantees it
// is present on every route that reaches a resource handler.
func mustUser(c *gin.Context) *model.User {
	user, _ := currentUser(c)
	return user
}

// abortWith stops the chain and lets the error mapper render err.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// fail records err for the error mapper.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

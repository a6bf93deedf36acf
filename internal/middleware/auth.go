package middleware

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/requestdata"
  "github.com/slotter-org/batai-backend/internal/services"
  "github.com/slotter-org/batai-backend/internal/utils"
)

type AuthMiddleware struct {
  log               *logger.Logger
  authService       services.AuthService
  cookieName        string
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, cookieName string) *AuthMiddleware {
  middlewareLogger := log.With("Middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLogger, authService: authService, cookieName: cookieName}
}

// RequireAuth rejects the request with 401 unless its header or cookie carries
// a verified identity. It never touches the request body.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return am.requireAuth(false)
}

// RequireSocketAuth is RequireAuth that also accepts ?token=, for websocket
// upgrades only.
func (am *AuthMiddleware) RequireSocketAuth() gin.HandlerFunc {
  return am.requireAuth(true)
}

func (am *AuthMiddleware) requireAuth(allowQuery bool) gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := utils.ExtractToken(c.Request, am.cookieName, allowQuery)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
      return
    }
    ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
    if err != nil {
      am.log.Debug("Rejected token", "path", c.FullPath(), "error", err)
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
      return
    }
    if requestdata.OwnerFrom(ctx) == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
      return
    }
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}

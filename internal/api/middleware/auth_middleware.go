package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrack/internal/auth"
)

// AuthMiddleware 从 x-auth-token 头中取出令牌并校验，
// 将 userID 注入上下文后才放行到业务逻辑。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("x-auth-token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}

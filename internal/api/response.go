package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误响应统一为 {"msg": string}，状态码取 400/401/404/500。

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"msg": msg})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
}

func NotAuthorized(c *gin.Context)          { Error(c, http.StatusUnauthorized, "Not authorized") }
func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, msg) }

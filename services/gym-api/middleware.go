package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/pandarack/gym-server/log"
)

// RequestLogger logs every request with its status and latency.
func RequestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	log.Info("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
		log.SourceAPI)
}

// TokenAuthenticate is the simplest authentication method based on a fixed key/value pair.
func TokenAuthenticate(tokenKey, tokenValue string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(tokenKey)
		if token != tokenValue {
			abortWithError(c, http.StatusForbidden, "invalid api token", fmt.Errorf("invalid api token"))
			return
		}
		c.Next()
	}
}

type userClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// AuthenticateUser validates a bearer JWT and resolves the requesting user.
// Weight records are scoped per user, so every weight route runs behind it.
func (s *GymServer) AuthenticateUser(c *gin.Context) {
	tokenStrings := strings.Split(c.GetHeader("Authorization"), " ")
	if len(tokenStrings) != 2 || tokenStrings[0] != "Bearer" {
		abortWithError(c, http.StatusUnauthorized, "invalid authorization format", nil)
		return
	}

	var claims userClaims
	token, err := jwt.ParseWithClaims(tokenStrings[1], &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "invalid token", err)
		return
	}
	if !token.Valid {
		abortWithError(c, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		abortWithError(c, http.StatusUnauthorized, "invalid requester", nil)
		return
	}

	c.Set("userID", userID)
	c.Next()
}

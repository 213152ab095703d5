package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pandarack/gym-server/log"
	"github.com/pandarack/gym-server/traceutils"
)

func abortWithError(c *gin.Context, code int, message string, traceErr error) {
	log.Error(message, zap.Error(traceErr), log.SourceAPI)
	traceutils.CaptureException(c, traceErr)

	c.AbortWithStatusJSON(code, gin.H{
		"success": false,
		"message": message,
	})
}

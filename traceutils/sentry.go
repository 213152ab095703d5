package traceutils

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// CaptureException forwards an error to the sentry hub attached to the
// request, if the sentrygin middleware installed one.
func CaptureException(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}

func AddScopeTag(c *gin.Context, key, value string) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.Scope().SetTag(key, value)
	}
}

func SetHandlerTag(c *gin.Context, handler string) {
	AddScopeTag(c, "handler", handler)
}

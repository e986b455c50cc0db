package handler

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/abhissng/chargehub/adapters/gin/middleware"
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/gin-gonic/gin"
)

// RequestHandler produces the response value of a route.
type RequestHandler func(c *gin.Context) (any, error)

// ExecuteControllerHandler runs handler and writes its value as 200 JSON.
// A blame error is written with the status of its response type; any other error,
// and any panic, becomes a 500 handler-failed response. The listener keeps serving either way.
func ExecuteControllerHandler(logger *log.Log, route string, handler RequestHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			value any
			err   error
		)

		func() {
			defer func() {
				if exception := recover(); exception != nil {
					err = handleException(logger, route, c, exception)
				}
			}()
			value, err = handler(c)
		}()

		if c.IsAborted() {
			return
		}
		if err != nil {
			processError(logger, route, c, err)
			return
		}
		if value == nil {
			c.Status(http.StatusOK)
			return
		}
		c.JSON(http.StatusOK, value)
	}
}

// handleException logs the panic with its stack and converts it to an error.
func handleException(logger *log.Log, route string, c *gin.Context, exception any) error {
	logger.Error("Exception occurred in handler",
		log.String("route", route),
		log.String(constant.CorrelationID, c.GetString(constant.CorrelationID)),
		log.Any("error", exception),
		log.String("stack", string(debug.Stack())))
	return fmt.Errorf("panic: %v", exception)
}

// processError writes the blame response for err.
func processError(logger *log.Log, route string, c *gin.Context, err error) {
	var b blame.Blame
	if !errors.As(err, &b) {
		b = blame.HandlerFailedError(route, err)
	}

	logger.Error(constant.HandlerFailed,
		log.String("route", route),
		log.String(constant.CorrelationID, c.GetString(constant.CorrelationID)),
		log.Blame(b))
	middleware.AbortWithBlame(c, b)
}

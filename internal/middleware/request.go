package middleware

import (
	"log"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

// RequestID honours an incoming X-Request-Id and otherwise mints a UUID.
func RequestID() echo.MiddlewareFunc {
	return echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

func RequestLogger() echo.MiddlewareFunc {
	return echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d request_id=%s", v.Method, v.URI, v.Status, v.RequestID)
			return nil
		},
	})
}

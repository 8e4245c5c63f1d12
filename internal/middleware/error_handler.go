package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code >= http.StatusInternalServerError {
		log.Printf("[ErrorHandler] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		msg = http.StatusText(code)
	}

	resp := dto.ErrorResponse{Message: msg}
	var ce *availability.ConflictError
	var ue *service.UnavailableError
	switch {
	case errors.As(err, &ce):
		resp.Reasons = ce.Reasons
	case errors.As(err, &ue):
		resp.Reasons = ue.Reasons
	}

	_ = c.JSON(code, resp)
}

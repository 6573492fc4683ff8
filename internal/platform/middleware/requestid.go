package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader carries the id on the wire, in both directions.
	RequestIDHeader = "X-Request-ID"
	// ContextKeyRequestID is the echo context key the id is stored under;
	// the logger and recovery middleware read it from there.
	ContextKeyRequestID = "request_id"
)

// RequestID attaches a request id to the context and response, preserving
// one supplied by the client.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Set(ContextKeyRequestID, rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}

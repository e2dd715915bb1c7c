package db

import (
	"context"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const sessionKey = "db_session"

// Scope opens a session for the duration of one request. The session and the
// request context seen by the handler share a context that is cancelled once
// the handler returns, whatever the outcome, so nothing started through either
// outlives the request.
func (h *Handle) Scope(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx, release := context.WithCancel(req.Context())
		defer release()

		c.SetRequest(req.WithContext(ctx))
		defer c.SetRequest(req)

		c.Set(sessionKey, h.DB.WithContext(ctx))
		defer c.Set(sessionKey, nil)

		return next(c)
	}
}

// Session returns the request's scoped session, if Scope ran for it.
func Session(c echo.Context) (*gorm.DB, bool) {
	sess, ok := c.Get(sessionKey).(*gorm.DB)
	return sess, ok && sess != nil
}

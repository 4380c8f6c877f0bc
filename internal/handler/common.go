// Package handler contains the HTTP handlers behind the /api routes.
package handler

import (
	"database/sql"
	"errors"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user id placed in the context by the
// JWTAuth middleware.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get("user_id").(uint64); ok && id > 0 {
		return id, nil
	}
	return 0, errors.New("invalid user_id in context")
}

// nullString converts an optional JSON field into its SQL representation.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// strPtr converts back for responses: nil when the column was NULL.
func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// Package middleware contains reusable Echo middleware: the bearer-token
// guard, the Redis response cache and the Redis rate limiter.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns middleware that gates protected routes behind a valid
// bearer access token. On success the decoded user identifier is placed in
// the context under "user_id" as uint64; handlers read it via a helper and
// never touch the token themselves.
//
// Failure modes are deliberately split the way the API documents them:
// a missing Authorization header, a header without a token segment, and a
// token that fails signature or expiry checks each produce their own 401
// message.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token, authorization denied"})
			}

			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authorization token not found"})
			}
			raw := strings.TrimSpace(parts[1])

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				// Only HMAC tokens are issued; reject anything else.
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
			}
			// JSON numbers decode as float64.
			uid, ok := claims["userId"].(float64)
			if !ok || uid <= 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
			}

			c.Set("user_id", uint64(uid))
			return next(c)
		}
	}
}

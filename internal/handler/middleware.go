package handler

import (
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"glaminator/internal/auth"
	"glaminator/internal/errors"
	"glaminator/internal/session"
)

// Authenticate verifies the bearer access token and stores the caller's
// session in the request context. Blacklisted tokens and tokens whose typ
// claim is not access are rejected.
func Authenticate(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			claims, err := jwtService.ValidateAccessToken(raw)
			if err != nil {
				return nil, err
			}
			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return nil, err
			}

			ctx := c.Request().Context()
			if blacklisted, _ := tokenStore.IsAccessTokenBlacklisted(ctx, claims.ID); blacklisted {
				return nil, errors.ErrNoSession
			}

			sess := &session.Session{
				UserID:   userID,
				Username: claims.Username,
				TokenID:  claims.ID,
			}
			if claims.ExpiresAt != nil {
				sess.ExpiresAt = claims.ExpiresAt.Time
			}
			c.SetRequest(c.Request().WithContext(session.NewContext(ctx, sess)))
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid or expired token",
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/yanqian/textcraft/pkg/errors"
)

const authSubjectKey = "auth_subject"

// bearerAuthMiddleware requires an HS256 JWT signed with secret. An empty
// secret disables the check.
func bearerAuthMiddleware(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthenticated, "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthenticated, "invalid authorization header", nil))
			return
		}

		var claims jwt.RegisteredClaims
		_, err := parser.ParseWithClaims(strings.TrimSpace(parts[1]), &claims, func(*jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthenticated, "invalid token", err))
			return
		}
		c.Set(authSubjectKey, claims.Subject)
		c.Next()
	}
}

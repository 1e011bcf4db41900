package middlewares

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	. "github.com/rostsocial/rost/utils/log"
)

const (
	// ErrorTokenAuthFail is the code of every 401 body written by JWT.
	ErrorTokenAuthFail = 40101

	// viewerKey is where the authenticated subject is stored on the context.
	viewerKey = "viewer_id"
	subHeader = "sub"
)

var (
	// jwtSecret is the HS256 key tokens are verified with. Before using JWT(),
	// make sure it's initialized by Setup.
	jwtSecret []byte

	ErrEmptySecret = errors.New("JWT_SECRET is not set")
)

// Setup initialized all package scoped variables that are needed to perform
// middleware functionalities. This function must be called before any
// middleware is used.
func Setup() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Abort directly, the server can't tell viewers apart without it.
		Log.Fatal(ErrEmptySecret)
	}
	setSecret([]byte(secret))
}

func setSecret(secret []byte) {
	jwtSecret = secret
}

// GenerateToken signs an HS256 token for subject, mostly for tests and local
// tooling, production tokens come from the auth backend.
func GenerateToken(subject string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateToken parses token and returns its subject.
func ValidateToken(token string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// tokenFromRequest looks at the Authorization header first, then at the
// "token" query param which websocket clients use.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("token")
}

// JWT middleware fetch viewer jwt in the http request. Requests without a
// token pass through as anonymous readers, handlers decide whether that's
// enough. An invalid token (wrong signature or expired) is rejected. On
// success the viewer id is available through ViewerID and the "sub" header.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Never trust a client provided subject.
		c.Request.Header.Del(subHeader)

		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		sub, err := ValidateToken(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": ErrorTokenAuthFail,
				"msg":  err.Error(),
			})
			c.Abort()
			return
		}

		c.Request.Header.Set(subHeader, sub)
		c.Set(viewerKey, sub)
		c.Next()
	}
}

// ByPassAuth trusts the "sub" header as is. Only for local debugging.
func ByPassAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sub := c.GetHeader(subHeader); sub != "" {
			c.Set(viewerKey, sub)
		}
		c.Next()
	}
}

// ViewerID returns the authenticated viewer, empty for anonymous requests.
func ViewerID(c *gin.Context) string {
	return c.GetString(viewerKey)
}

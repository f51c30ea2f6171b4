package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/test", AuthRequired(testSecret, nil), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	valid, _, err := IssueToken(testSecret, 123, "closet_owner", time.Now())
	require.NoError(t, err)
	expired, _, err := IssueToken(testSecret, 123, "closet_owner", time.Now().Add(-8*24*time.Hour))
	require.NoError(t, err)
	otherSecret, _, err := IssueToken("another-secret-another-secret-1234", 123, "x", time.Now())
	require.NoError(t, err)

	foreignIssuer := func() string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": strconv.Itoa(123),
			"iss": "someone-else",
			"aud": TokenAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, _ := token.SignedString([]byte(testSecret))
		return s
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK, 123},
		{"Missing Header", "", http.StatusUnauthorized, 0},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0},
		{"Expired Token", "Bearer " + expired, http.StatusUnauthorized, 0},
		{"Wrong Secret", "Bearer " + otherSecret, http.StatusUnauthorized, 0},
		{"Foreign Issuer", "Bearer " + foreignIssuer(), http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(tt.expectedUserID), body["userID"])
			}
		})
	}
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	token, claims, err := IssueToken(testSecret, 9, "someone", time.Now())
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", AuthRequired(testSecret, rdb), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	call := func() int {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, call())

	require.NoError(t, RevokeToken(context.Background(), rdb, claims.JTI, claims.ExpiresAt))
	assert.True(t, mr.Exists("blacklist:"+claims.JTI))
	assert.Equal(t, http.StatusUnauthorized, call())
}

func TestParseToken_RoundTrip(t *testing.T) {
	now := time.Now()
	token, issued, err := IssueToken(testSecret, 42, "ana", now)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.WithinDuration(t, now.Add(TokenTTL), claims.ExpiresAt, time.Second)

	_, _, err = IssueToken("", 1, "x", now)
	assert.Error(t, err)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/internal/core/ports/mocks"
	"marketplace-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func runJWTAuth(t *testing.T, tokenSvc ports.TokenService, authHeader string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets/me", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	JWTAuth(tokenSvc, zerolog.Nop())(c)
	return c, w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("good-token").Return(&ports.TokenClaims{UserID: userID}, nil)

	c, w := runJWTAuth(t, tokenSvc, "Bearer good-token")

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
	got, ok := c.Get(CtxUserID)
	require.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, w := runJWTAuth(t, mocks.NewMockTokenService(ctrl), "")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_NotBearer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, w := runJWTAuth(t, mocks.NewMockTokenService(ctrl), "Basic dXNlcjpwYXNz")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("bad-token").Return(nil, apperror.ErrInvalidToken())

	c, w := runJWTAuth(t, tokenSvc, "Bearer bad-token")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestMaxBodySize(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodySize(16))
	r.POST("/echo", func(c *gin.Context) {
		var body struct{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"padding":"`+strings.Repeat("x", 64)+`"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

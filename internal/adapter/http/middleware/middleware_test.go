package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/internal/core/ports/mocks"

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

func authRouter(keySvc ports.ApiKeyService, tokenSvc ports.TokenService, required domain.Permission) *gin.Engine {
	router := gin.New()
	router.POST("/test", Auth(keySvc, tokenSvc, required, zerolog.Nop()), func(c *gin.Context) {
		uid := c.MustGet(CtxUserID).(uuid.UUID)
		c.JSON(200, gin.H{"user_id": uid.String(), "method": c.GetString(CtxAuthMethod)})
	})
	return router
}

func TestAuth_NoCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := authRouter(mocks.NewMockApiKeyService(ctrl), mocks.NewMockTokenService(ctrl), domain.PermissionRead)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestAuth_ValidAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	keySvc := mocks.NewMockApiKeyService(ctrl)
	keySvc.EXPECT().ValidateKey(gomock.Any(), "sk_live_abc", domain.PermissionTransfer).
		Return(&ports.KeyValidation{Valid: true, UserID: userID}, nil)

	router := authRouter(keySvc, mocks.NewMockTokenService(ctrl), domain.PermissionTransfer)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set(HeaderAPIKey, "sk_live_abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, AuthMethodAPIKey, body["method"])
}

func TestAuth_APIKeyMissingPermission(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	keySvc := mocks.NewMockApiKeyService(ctrl)
	keySvc.EXPECT().ValidateKey(gomock.Any(), "sk_live_readonly", domain.PermissionTransfer).
		Return(&ports.KeyValidation{Valid: false}, nil)

	router := authRouter(keySvc, mocks.NewMockTokenService(ctrl), domain.PermissionTransfer)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set(HeaderAPIKey, "sk_live_readonly")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_002")
}

func TestAuth_ValidSessionToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("session-jwt").Return(&ports.TokenClaims{UserID: userID}, nil)

	// A session token passes regardless of the required permission.
	router := authRouter(mocks.NewMockApiKeyService(ctrl), tokenSvc, domain.PermissionTransfer)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Bearer session-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, AuthMethodSession, body["method"])
}

func TestAuth_InvalidSessionToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("expired-jwt").Return(nil, assert.AnError)

	router := authRouter(mocks.NewMockApiKeyService(ctrl), tokenSvc, domain.PermissionRead)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Bearer expired-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_003")
}

func TestAuth_APIKeyTakesPrecedence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	keySvc := mocks.NewMockApiKeyService(ctrl)
	keySvc.EXPECT().ValidateKey(gomock.Any(), "sk_live_abc", domain.PermissionRead).
		Return(&ports.KeyValidation{Valid: true, UserID: userID}, nil)

	// No token validation: the API key path wins when both are present.
	router := authRouter(keySvc, mocks.NewMockTokenService(ctrl), domain.PermissionRead)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set(HeaderAPIKey, "sk_live_abc")
	req.Header.Set("Authorization", "Bearer session-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionAuth_RejectsAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := gin.New()
	router.GET("/keys", SessionAuth(mocks.NewMockTokenService(ctrl)), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/keys", nil)
	req.Header.Set(HeaderAPIKey, "sk_live_abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAuth_ValidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("jwt").Return(&ports.TokenClaims{UserID: userID}, nil)

	router := gin.New()
	router.GET("/keys", SessionAuth(tokenSvc), func(c *gin.Context) {
		c.JSON(200, gin.H{"user_id": c.MustGet(CtxUserID).(uuid.UUID).String()})
	})

	req := httptest.NewRequest(http.MethodGet, "/keys", nil)
	req.Header.Set("Authorization", "Bearer jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestMaxBodySize(t *testing.T) {
	router := gin.New()
	router.Use(MaxBodySize(16))
	router.POST("/test", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too large")
			return
		}
		c.JSON(200, gin.H{"ok": true})
	})

	t.Run("small body passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test",
			strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

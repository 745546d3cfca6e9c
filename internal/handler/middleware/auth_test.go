//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"mentor-booking/internal/domain/user"
	"mentor-booking/internal/handler/httperr"
	"mentor-booking/internal/handler/middleware"
	"mentor-booking/internal/testutil/httptest"
	usecasemock "mentor-booking/internal/testutil/mock/usecase"
	"mentor-booking/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	setup := func(t *testing.T) (*gin.Engine, *usecasemock.MockTokenValidator, *usecase.Principal) {
		ctrl := gomock.NewController(t)
		validator := usecasemock.NewMockTokenValidator(ctrl)
		seen := &usecase.Principal{}

		r := gin.New()
		r.GET("/me", middleware.NewAuthMiddleware(validator).RequireAuth(), func(c *gin.Context) {
			p, ok := middleware.GetPrincipal(c)
			if !ok {
				c.Status(http.StatusTeapot)
				return
			}
			*seen = p
			id, _ := middleware.GetUserID(c)
			role, _ := middleware.GetUserRole(c)
			c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
		})
		return r, validator, seen
	}

	t.Run("valid token exposes the principal", func(t *testing.T) {
		r, validator, seen := setup(t)
		want := usecase.Principal{UserID: uuid.New(), Role: user.RoleMentor}
		validator.EXPECT().ValidateToken("good").Return(want, nil)

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, "good")

		var body struct {
			ID   uuid.UUID `json:"id"`
			Role string    `json:"role"`
		}
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, want, *seen)
		assert.Equal(t, want.UserID, body.ID)
		assert.Equal(t, "mentor", body.Role)
	})

	t.Run("missing header is rejected without validation", func(t *testing.T) {
		r, _, _ := setup(t)
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		r, _, _ := setup(t)
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, "", map[string]string{"Authorization": "Basic abc"})
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		r, validator, _ := setup(t)
		validator.EXPECT().ValidateToken("expired").Return(usecase.Principal{}, errors.New("token is expired"))

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, "expired")
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})
}

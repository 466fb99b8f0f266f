package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"go.uber.org/zap"

	"craftcrm/pkg/rbac"
)

func replayContext(w *httptest.ResponseRecorder, role, id string) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/outbox/"+id+"/replay", nil)
	c.Params = gin.Params{{Key: "id", Value: id}}
	c.Set("user_id", 1)
	c.Set("user_name", "Asha")
	c.Set("user_role", role)
	return c
}

func TestReplayOutboxEventRequiresCapability(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(nil, zap.NewNop())

	w := httptest.NewRecorder()
	h.ReplayOutboxEvent(replayContext(w, rbac.RoleSales, "42"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestReplayOutboxEventRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(nil, zap.NewNop())

	w := httptest.NewRecorder()
	h.ReplayOutboxEvent(replayContext(w, rbac.RoleAdmin, "abc"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid id")
}

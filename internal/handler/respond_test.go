package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"craftcrm/internal/progression"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind progression.ErrorKind
		want int
	}{
		{progression.KindOnHold, http.StatusConflict},
		{progression.KindBackwardMove, http.StatusConflict},
		{progression.KindSkippedSubstage, http.StatusConflict},
		{progression.KindForwardOnly, http.StatusConflict},
		{progression.KindAlreadyCompleted, http.StatusConflict},
		{progression.KindValidation, http.StatusBadRequest},
		{progression.KindOutOfRange, http.StatusBadRequest},
		{progression.KindForbidden, http.StatusForbidden},
		{progression.KindNotFound, http.StatusNotFound},
		{progression.KindUnknownSubstage, http.StatusNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.kind), string(tt.kind))
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("rejection carries kind", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, &progression.Error{
			Kind:    progression.KindBackwardMove,
			Message: "cannot move stage backward",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"cannot move stage backward","kind":"backward_move"}`, w.Body.String())
	})

	t.Run("internal errors hide detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

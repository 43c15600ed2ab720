package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookline/services/scheduling"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", scheduling.NewValidationError("bad input"), http.StatusBadRequest},
		{"forbidden", scheduling.NewForbidden("not yours"), http.StatusForbidden},
		{"invalid state", scheduling.NewInvalidState("already resolved"), http.StatusConflict},
		{"not found", scheduling.NewNotFound("no such request"), http.StatusNotFound},
		{"unclassified", errors.New("mongo blew up"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

package handlers

import (
	"net/http"

	"bookline/services/scheduling"
	"bookline/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps a domain error to its HTTP status. Non-domain errors are
// reported as internal without leaking detail.
func respondError(c *gin.Context, err error) {
	switch scheduling.CodeOf(err) {
	case scheduling.CodeValidation:
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
	case scheduling.CodeForbidden:
		utils.JSONError(c, http.StatusForbidden, "forbidden", err.Error())
	case scheduling.CodeInvalidState:
		utils.JSONError(c, http.StatusConflict, "invalid state", err.Error())
	case scheduling.CodeNotFound:
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	default:
		utils.GetLogger().Error("internal error: " + err.Error())
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse{
			Message: "Internal Server Error",
		})
	}
}

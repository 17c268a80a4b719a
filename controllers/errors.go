package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

var errInternal = errors.New("internal server error")

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnavailable:
		return http.StatusUnprocessableEntity
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondServiceError writes err with the status its kind maps to. Internal
// errors are logged and hidden from the client.
func respondServiceError(c *gin.Context, err error) {
	status := statusFor(services.KindOf(err))
	if status == http.StatusInternalServerError {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Errorf("request failed: %v", err)
		utils.RespondError(c, status, errInternal)
		return
	}
	utils.RespondError(c, status, err)
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New(name+" must be a number"))
		return 0, false
	}
	return v, true
}

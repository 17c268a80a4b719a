package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/utils"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

// Health reports whether the database answers.
func (hc *HealthController) Health(c *gin.Context) {
	sqlDB, err := hc.DB.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		utils.ErrorLogger.Errorf("health check: %v", err)
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("database unreachable"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "ok", gin.H{"database": "up"})
}

func Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

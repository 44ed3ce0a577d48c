// Package httpui exposes the client's local control surface: status,
// transcript, render slots, chat and metrics.
package httpui

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/config"
)

type joinRequest struct {
	Room     string `json:"room"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type chatRequest struct {
	Text string `json:"text"`
}

func SetupRouter(cfg *config.Config, ctrl *app.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	log.Info().Str("module", "httpui").Msg("router setup")

	api := r.Group("/api")

	api.GET("/status", func(c *gin.Context) {
		room, joined := ctrl.CurrentRoom()
		c.JSON(http.StatusOK, gin.H{
			"status":      ctrl.Status(),
			"room":        room,
			"joined":      joined,
			"negotiation": ctrl.NegotiationState().String(),
		})
	})

	api.GET("/transcript", func(c *gin.Context) {
		c.JSON(http.StatusOK, ctrl.Transcript())
	})

	api.GET("/slots", func(c *gin.Context) {
		c.JSON(http.StatusOK, ctrl.Slots())
	})

	api.POST("/join", func(c *gin.Context) {
		var req joinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := ctrl.JoinRoom(c.Request.Context(), req.Room, req.Password, req.Username); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	api.POST("/leave", func(c *gin.Context) {
		ctrl.LeaveRoom()
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	api.POST("/chat", func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := ctrl.SendChat(req.Text); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/server/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const operatorIDKey = "operatorID"

// bearerAuth requires "Authorization: Bearer <token>" with a valid operator
// access token.
func bearerAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		operatorID, err := auth.GetOperatorIDFromToken(strings.TrimSpace(raw), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(operatorIDKey, operatorID)
		c.Next()
	}
}

// NewRouter wires the admin routes. allowOrigins feeds the CORS policy of the
// dashboard.
func NewRouter(h *Handler, secret []byte, allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	api := router.Group("/api", bearerAuth(secret))
	{
		api.POST("/events", h.CreateEvent)
		api.GET("/events/:eventID", h.GetEvent)
		api.POST("/events/:eventID/registrations", h.Register)
		api.GET("/events/:eventID/stats", h.Stats)
		api.POST("/events/:eventID/export", h.Export)
	}

	return router
}

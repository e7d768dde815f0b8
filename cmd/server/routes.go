package main

import (
	"net/http"
	"strings"

	"cafe-team.backend/internal/interfaces/http/handlers"
	"cafe-team.backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "cafe-team-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	teamMemberHandler *handlers.TeamMemberHandler
	authMiddleware    gin.HandlerFunc
	adminRole         string
	idempotency       gin.HandlerFunc
	events            http.Handler
	storageDir        string
}

func applyCORSMiddleware(r *gin.Engine, allowedOrigins string) {
	origins := splitOrigins(allowedOrigins)
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && originAllowed(origins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func originAllowed(origins []string, origin string) bool {
	for _, o := range origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	if d.storageDir != "" {
		r.Static("/storage/v1/object/public/team-images", d.storageDir)
	}

	v1 := r.Group("/api/v1")
	{
		// Public team page
		team := v1.Group("/team-members")
		{
			team.GET("", d.teamMemberHandler.ListPublic)
			team.GET("/featured", d.teamMemberHandler.ListFeatured)
			if d.events != nil {
				team.GET("/events", gin.WrapH(d.events))
			}
		}

		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireRole(d.adminRole))
		{
			members := admin.Group("/team-members")
			members.GET("", d.teamMemberHandler.ListAdmin)
			members.POST("", d.idempotency, d.teamMemberHandler.CreateTeamMember)
			members.PUT("/order", d.teamMemberHandler.ReorderTeamMembers)
			members.GET("/next-order", d.teamMemberHandler.NextDisplayOrder)
			members.GET("/stats", d.teamMemberHandler.Stats)
			members.GET("/:id", d.teamMemberHandler.GetTeamMember)
			members.PATCH("/:id", d.teamMemberHandler.UpdateTeamMember)
			members.DELETE("/:id", d.teamMemberHandler.DeleteTeamMember)
			members.POST("/:id/toggle-featured", d.teamMemberHandler.ToggleFeatured)
			members.POST("/:id/toggle-active", d.teamMemberHandler.ToggleActive)
			members.POST("/:id/image", d.teamMemberHandler.UploadImage)
			members.DELETE("/:id/image", d.teamMemberHandler.DeleteImage)
		}
	}
}

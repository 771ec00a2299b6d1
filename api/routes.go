package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/speakerkit/auth/jwt"
	"github.com/kbukum/speakerkit/server/middleware"
)

// PublicPaths stay reachable without a token when auth is enabled.
var PublicPaths = []string{"/", "/health", "/alive", "/ready", "/info", "/metrics"}

// RegisterRoutes mounts the API on r. Read routes require jwt.ScopeRead and
// mutating routes jwt.ScopeWrite; both checks pass when no auth middleware
// put claims in the request.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	read := middleware.RequireScope(jwt.ScopeRead)
	write := middleware.RequireScope(jwt.ScopeWrite)

	r.GET("/health", h.health)
	r.GET("/", h.root)

	r.POST("/diarize", read, h.diarize)
	r.POST("/identify", read, h.identify)
	r.POST("/transcribe-diarized", read, h.transcribeDiarized)
	r.POST("/transcribe-identified", read, h.transcribeIdentified)

	speakers := r.Group("/speakers")
	speakers.GET("", read, h.listSpeakers)
	speakers.GET("/:id", read, h.getSpeaker)
	speakers.POST("/register", write, h.registerSpeaker)
	speakers.POST("/add-sample/:id", write, h.addSample)
	speakers.DELETE("/:id", write, h.deleteSpeaker)

	r.GET("/stats", read, h.stats)
}

package router

import (
	"github.com/adilinfo14/sondage/internal/handlers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	pollHandler := handlers.NewPollHandler()
	voteHandler := handlers.NewVoteHandler()
	weatherHandler := handlers.NewWeatherHandler()

	// Sondage
	r.GET("/", pollHandler.Home)                                 // Landing page with the create form
	r.POST("/create", pollHandler.Create)                        // Create a poll
	r.GET("/poll/:token", pollHandler.View)                      // Poll page (form + results)
	r.POST("/poll/:token/vote", voteHandler.Submit)              // Submit or replace a vote
	r.GET("/poll/:token/vote-status", voteHandler.Status)        // Duplicate-vote check (JSON)
	r.POST("/poll/:token/admin-login", pollHandler.AdminLogin)   // Organizer mode on
	r.POST("/poll/:token/admin-logout", pollHandler.AdminLogout) // Organizer mode off

	// Météo
	r.GET("/weather", weatherHandler.Index)       // Weather page
	r.GET("/api/suggest", weatherHandler.Suggest) // City autocomplete (JSON)
	r.GET("/api/weather", weatherHandler.Weather) // Current + 5-day forecast (JSON)
}

// handlers/match.go
package handlers

import (
	"bot-arena-system/middleware"
	"bot-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/matches/current", matchService.GetCurrentMatch)
	app.Get("/matches/:id", matchService.GetMatchByID)
	app.Get("/matches/:id/sync", matchService.GetMatchSyncInfo)
	app.Get("/matches/:id/betting-status", matchService.GetBettingStatus)
	app.Get("/characters", matchService.GetCharacters)

	// 🔐 Manual match creation (admin only — the scheduler handles rollover).
	// User context is attached per route: a Group("/") would mount it as an
	// app-wide prefix match and swallow public routes registered after it.
	app.Post("/matches", middleware.UserContextMiddleware(), middleware.RequireAdmin(), matchService.CreateMatch)
}

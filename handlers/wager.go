// handlers/wager.go
package handlers

import (
	"bot-arena-system/middleware"
	"bot-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWagerRoutes(app *fiber.App, wagerService *services.WagerService) {
	// 🔓 Pool totals are public (countdown UIs poll them)
	app.Get("/matches/:id/pool", wagerService.GetPool)

	// 🔐 Placing and listing wagers needs a user
	app.Post("/matches/:id/wagers", middleware.UserContextMiddleware(), wagerService.PlaceWager)
	app.Get("/users/me/wagers", middleware.UserContextMiddleware(), wagerService.GetUserWagers)
}

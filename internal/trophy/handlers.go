package trophy

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, store *Store, registry *Registry) {
	r.Get("/", func(c *fiber.Ctx) error {
		trophies, err := store.ActiveTrophies(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(trophies)
	})

	r.Get("/user/:userID/awards", func(c *fiber.Ctx) error {
		awards, err := store.AwardsForUser(c.Context(), c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(awards)
	})

	r.Get("/:id/progress/:userID", func(c *fiber.Ctx) error {
		t, err := store.GetTrophy(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "trophy not found")
		}
		checker, ok := registry.For(t.Kind)
		if !ok {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "unknown achievement kind")
		}
		user, err := store.GetUser(c.Context(), c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return c.JSON(checker.Progress(c.Context(), user, t))
	})
}

package server

import (
	"log"

	"backend-trailquest/internal/activity"
	"backend-trailquest/internal/auth"
	"backend-trailquest/internal/config"
	"backend-trailquest/internal/route"
	"backend-trailquest/internal/stream"
	"backend-trailquest/internal/trophy"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	routeSvc := route.NewService(s.DB)
	trophyStore := trophy.NewStore(s.DB)
	activitySvc := activity.NewService(s.DB, routeSvc, nil)

	registry, err := trophy.NewDefaultRegistry(activitySvc)
	if err != nil {
		log.Fatalf("achievement registry: %v", err)
	}
	activitySvc.SetEvaluator(trophy.NewEvaluator(registry, trophyStore, s.Stream))

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	route.RegisterRoutes(s.App.Group("/routes"), routeSvc, jwtMiddleware)
	activity.RegisterRoutes(s.App.Group("/activities"), activitySvc, jwtMiddleware)
	trophy.RegisterRoutes(s.App.Group("/trophies"), trophyStore, registry)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

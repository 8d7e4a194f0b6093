package main

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/golang-jwt/jwt/v5"

	"folio/pkg/broker"
	"folio/pkg/cache"
	"folio/pkg/database"
	"folio/pkg/envelope"
	"folio/pkg/handlers"
	"folio/pkg/hub"
	"folio/pkg/middleware"
	"folio/pkg/repository"
	"folio/pkg/server"
	"folio/pkg/services"
)

func main() {
	db := database.Connect()
	defer db.Close()

	// Serverless PG: keep pool small, connections short-lived
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	database.Migrate(db)
	go cleanExpiredSessions(db)

	log.Println("[FORUM] Connecting to Redis...")
	redis := cache.New()
	defer redis.Close()
	log.Println("[FORUM] Redis connected")

	events := broker.New()
	defer events.Close()

	wsHub := hub.New()

	// Every instance relays the shared event stream to its own sockets.
	events.Subscribe(func(env envelope.Envelope) {
		wsHub.BroadcastEnvelope(env)
	}, broker.EventsChannel)

	authRepo := repository.NewAuthRepository(db)
	forumRepo := repository.NewForumRepository(db)

	authSvc := services.NewAuthService(authRepo)
	forumSvc := services.NewForumService(forumRepo, redis, events)

	auth := handlers.NewAuth(authSvc)
	forum := handlers.NewForum(forumSvc, wsHub)
	forum.RegisterActions()

	app := server.NewApp("folio-forum")

	authGroup := app.Group("/auth")
	authGroup.Post("/register", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.Register)

	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.Login)

	authGroup.Post("/refresh", auth.Refresh)
	authGroup.Get("/session", auth.Session)

	authPriv := authGroup.Group("", middleware.AuthMiddleware)
	authPriv.Get("/me", auth.Me)
	authPriv.Post("/logout", auth.Logout)
	authPriv.Post("/logout-all", auth.LogoutAll)
	authPriv.Get("/sessions", auth.Sessions)

	// ── Forum (public read with optional identity, auth write) ──
	forumGroup := app.Group("/forum", middleware.OptionalAuth)
	forumGroup.Get("/posts", forum.ListPosts)
	forumGroup.Get("/posts/:id", forum.GetThread)

	forumPriv := forumGroup.Group("", middleware.AuthMiddleware)
	forumPriv.Post("/posts", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), forum.CreatePost)
	forumPriv.Post("/posts/:id/replies", forum.CreateReply)
	forumPriv.Post("/posts/:id/best-answer", forum.MarkBestAnswer)
	forumPriv.Post("/vote", forum.Vote)
	forumPriv.Delete("/posts/:id", forum.DeletePost)
	forumPriv.Delete("/replies/:id", forum.DeleteReply)

	app.Get("/hub/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"clients":       wsHub.ClientCount(),
			"authenticated": wsHub.AuthenticatedCount(),
		})
	})

	app.Use("/ws", parseWSToken)

	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("user_id").(int)
		userUUID, _ := c.Locals("user_uuid").(string)
		username, _ := c.Locals("username").(string)
		wsHub.HandleClientConn(c, userID, userUUID, username)
	}))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	addr := "0.0.0.0:" + port
	log.Printf("[FORUM] Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("[FORUM] Failed to start: %v", err)
	}
}

// parseWSToken extracts identity from the token if one is supplied; the
// socket itself is open to anonymous readers.
func parseWSToken(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = authHeader[7:]
		}
	}

	userID := 0
	userUUID := ""
	username := ""

	if tokenStr != "" {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			secret = "dev-secret-key-change-in-production"
		}

		token, err := jwt.ParseWithClaims(tokenStr, &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})

		if err == nil && token.Valid {
			claims := token.Claims.(*jwt.MapClaims)
			if id, ok := (*claims)["user_id"].(float64); ok {
				userID = int(id)
			}
			if uid, ok := (*claims)["uuid"].(string); ok {
				userUUID = uid
			}
			if uname, ok := (*claims)["username"].(string); ok {
				username = uname
			}
		}
	}

	c.Locals("user_id", userID)
	c.Locals("user_uuid", userUUID)
	c.Locals("username", username)
	return c.Next()
}

func cleanExpiredSessions(db *sql.DB) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		db.Exec(`DELETE FROM sessions WHERE expires_at < NOW()`)
	}
}

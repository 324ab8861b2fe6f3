package http

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/displaywall/backend/internal/adapters/signal"
	"github.com/displaywall/backend/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins an opaque identity to each browser via the ct
// cookie; it becomes the WS session id.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, media *MediaHandler, ws *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(ClientTokenMiddleware())

	// Stored assets are served straight from the upload dir.
	r.Static("/uploads", cfg.UploadDir)

	log.Info().Str("module", "adapters.http").Str("uploads", cfg.UploadDir).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws/display", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws display endpoint hit")
		ws.HandleDisplay(ctx, c)
	})

	dm := api.Group("/display-media")
	dm.GET("", media.List)
	dm.GET("/:id", media.Get)

	admin := dm.Group("")
	admin.Use(RequireAdmin(cfg.Secret))
	admin.POST("", media.Create)
	admin.PUT("/:id", media.Update)
	admin.DELETE("/:id", media.Delete)

	return r
}

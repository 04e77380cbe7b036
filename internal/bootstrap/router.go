package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/solarplan/rooftop-backend/config"
	httpapi "github.com/solarplan/rooftop-backend/internal/api/http"
	"github.com/solarplan/rooftop-backend/internal/auth"
	"github.com/solarplan/rooftop-backend/internal/panels"
	"github.com/solarplan/rooftop-backend/internal/polygons"
	"github.com/solarplan/rooftop-backend/internal/projects"
	"github.com/solarplan/rooftop-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Cfg         *config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.Cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	sessionStore := auth.NewStore(dep.Redis)
	userRepo := users.NewRepo(dep.DB)
	projectRepo := projects.NewRepo(dep.DB)
	panelRepo := panels.NewRepo(dep.DB)

	api := r.Group("/api/v1")
	api.Use(auth.WithSession(sessionStore))
	api.Use(auth.RequireCSRF())

	authHandler := auth.NewHandler(sessionStore, userRepo)
	authHandler.Register(api)

	// Everything below resolves to an identity; anonymous visitors get a
	// guest provisioned on first use.
	identified := api.Group("")
	identified.Use(auth.WithIdentity(sessionStore, userRepo, dep.Cfg.Guests.ExpiryDays))

	projectsGroup := identified.Group("/projects")
	projects.Register(projectsGroup, projectRepo)

	polygonsGroup := identified.Group("/roof-polygons")
	polygonHandler := polygons.Register(polygonsGroup, projectRepo)
	polygonHandler.RegisterProjectSubroutes(projectsGroup)

	panels.Register(identified, panelRepo)

	return r
}

package handler

import (
	"strings"

	"property_portal/internal/middleware"
	"property_portal/internal/service"
	"property_portal/internal/storage"

	"github.com/gin-gonic/gin"
)

// Deps are the pieces the HTTP layer is assembled from
type Deps struct {
	Auth          service.AuthService
	Properties    service.PropertyService
	UploadsDir    string
	SecureCookies bool
	Ping          PingFunc
}

// NewRouter builds the gin engine with every API route mounted under /api
// and uploaded images served from /uploads.
func NewRouter(d Deps) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = 8 << 20
	router.Use(middleware.CORS())

	authMW := middleware.RequireSession(d.Auth)

	api := router.Group("/api")
	NewAuthHandler(d.Auth, d.SecureCookies).RegisterAuthRoutes(api)
	NewPropertyHandler(d.Properties).RegisterPropertyRoutes(api, authMW)
	api.GET("/health", Health(d.Ping))

	router.Static(strings.TrimSuffix(storage.URLPrefix, "/"), d.UploadsDir)

	return router
}

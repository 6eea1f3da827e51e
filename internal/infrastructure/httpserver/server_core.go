package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/polycache/polycache/internal/core/ports"
	customMiddleware "github.com/polycache/polycache/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type Server struct {
	echo       *echo.Echo
	config     *ServerConfig
	logger     *logrus.Logger
	cache      ports.Cache
	middleware *customMiddleware.MiddlewareCollection
}

func NewServer(serverConfig *ServerConfig, cache ports.Cache, logger *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:   e,
		config: serverConfig,
		logger: logger,
		cache:  cache,
		middleware: customMiddleware.NewMiddlewareCollection(
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

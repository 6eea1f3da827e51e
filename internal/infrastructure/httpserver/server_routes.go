package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/v1")
	api.GET("/cache/:registry/:key", s.getEntry)
	api.PUT("/cache/:registry/:key", s.putEntry)
	api.DELETE("/cache/:registry/:key", s.deleteEntry)
	api.POST("/cache/clear", s.clearAll)
	api.POST("/cache/cleanup", s.forceSweep)
}

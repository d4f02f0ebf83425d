package web

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snaptick/facematch/internal/web/handlers"
)

func (s *Server) setupRoutes(detector handlers.Detector) {
	facesHandler := handlers.NewFacesHandler(s.config, detector, s.log)

	s.router.Get("/", facesHandler.Info)
	s.router.Get("/health", facesHandler.Health)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Post("/extract-embedding", facesHandler.ExtractEmbedding)
	s.router.Post("/detect-faces", facesHandler.DetectFaces)
	s.router.Post("/match-faces", facesHandler.MatchFaces)
	s.router.Post("/verify", facesHandler.Verify)
	s.router.Post("/diagnose", facesHandler.Diagnose)
}

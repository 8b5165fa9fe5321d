package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cropwise/app"
	"cropwise/internal"
	"cropwise/ports"
)

// Server exposes the orchestration core over HTTP. It only surfaces state
// the core computes; all presentation concerns stay with the caller.
type Server struct {
	router   *chi.Mux
	selector *app.FeatureSelector
	workflow *app.DiseaseAnalysisWorkflow
	cache    *app.RecommendationCache
	chat     *app.CropChatService
	reports  *app.ReportService
	activity ports.ActivityRepository
	logger   *internal.Logger
}

// Deps holds the services the server renders
type Deps struct {
	Selector *app.FeatureSelector
	Workflow *app.DiseaseAnalysisWorkflow
	Cache    *app.RecommendationCache
	Chat     *app.CropChatService
	Reports  *app.ReportService
	Activity ports.ActivityRepository
	Logger   *internal.Logger
}

// NewServer creates the HTTP surface over the orchestration services
func NewServer(deps Deps) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		selector: deps.Selector,
		workflow: deps.Workflow,
		cache:    deps.Cache,
		chat:     deps.Chat,
		reports:  deps.Reports,
		activity: deps.Activity,
		logger:   deps.Logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Post("/crops/{cropID}/select", s.handleSelectCrop)
	s.router.Get("/state", s.handleState)
	s.router.Get("/summary", s.handleSummary)
	s.router.Get("/activity", s.handleActivity)
	s.router.Get("/report.xlsx", s.handleExportReport)

	s.router.Get("/chat", s.handleCropChatLog)
	s.router.Post("/chat", s.handleCropChatSend)

	s.router.Route("/disease", func(r chi.Router) {
		r.Get("/detections", s.handleListDetections)
		r.Post("/analyses", s.handleSubmitImage)
		r.Post("/upload-view", s.handleStartNewAnalysis)
		r.Post("/back", s.handleBackToHistory)
		r.Post("/detections/{id}/select", s.handleSelectDetection)
		r.Delete("/detections/{id}", s.handleDeleteDetection)
		r.Get("/detections/{id}/chat", s.handleDetectionChatLog)
		r.Post("/detections/{id}/chat", s.handleDetectionChatSend)
		r.Get("/detections/{id}/recommendations/{kind}", s.handleRecommendation)
	})
}

// Router returns the configured handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server on the given port
func (s *Server) Start(port string) error {
	s.logger.Info("server listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}

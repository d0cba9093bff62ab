package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"mediguide-backend/internal/handlers"
	"mediguide-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	analysisHandler *handlers.AnalysisHandler,
	drugHandler *handlers.DrugHandler,
	speechHandler *handlers.SpeechHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Chat ────
		r.Post("/chat", chatHandler.Stream)

		// ──── Meal Analysis ────
		r.Route("/analysis", func(r chi.Router) {
			r.Post("/compare", analysisHandler.Compare)
			r.Post("/nutrition", analysisHandler.Nutrition)
		})

		// ──── Drug Lookup ────
		r.Get("/drugs/search", drugHandler.Search)

		// ──── Speech ────
		r.Route("/speech", func(r chi.Router) {
			r.Post("/tts", speechHandler.TTS)
			r.Post("/transcribe", speechHandler.Transcribe)
		})
	})

	return r
}

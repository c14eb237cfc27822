package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docbase/internal/embedding"
	"docbase/internal/handlers"
	"docbase/internal/search"
	"docbase/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Collections      *service.CollectionService
	Files            *service.FileService
	SearchEngine     *search.Engine
	EmbeddingFactory embedding.Factory
	MetaDB           *sql.DB
	VectorDB         *sql.DB
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	collectionHandler := handlers.NewCollectionHandler(deps.Collections)
	fileHandler := handlers.NewFileHandler(deps.Files)
	searchHandler := handlers.NewSearchHandler(deps.SearchEngine)
	embeddingHandler := handlers.NewEmbeddingHandler(deps.EmbeddingFactory)
	healthHandler := handlers.NewHealthHandler(deps.MetaDB, deps.VectorDB)

	r.Route("/api", func(r chi.Router) {
		r.Route("/collections", func(r chi.Router) {
			r.Post("/", collectionHandler.Create)
			r.Get("/", collectionHandler.List)

			r.Route("/{collectionID}", func(r chi.Router) {
				r.Get("/", collectionHandler.Get)
				r.Put("/", collectionHandler.Update)
				r.Delete("/", collectionHandler.Delete)

				r.Post("/files", fileHandler.Upload)
				r.Get("/files", fileHandler.List)
				r.Delete("/files", fileHandler.DeleteAll)

				r.Post("/search", searchHandler.Search)
			})
		})

		r.Route("/files/{fileID}", func(r chi.Router) {
			r.Get("/", fileHandler.Get)
			r.Delete("/", fileHandler.Delete)
			r.Post("/retry", fileHandler.Retry)
		})

		r.Get("/embeddings/providers", embeddingHandler.Providers)
		r.Post("/embeddings", embeddingHandler.Embed)
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)

	return r
}

package router

import (
	"database/sql"
	"net/http"
	"strings"

	subHandler "prophecyorb/internal/submission"
	"prophecyorb/internal/submission/repository"
	"prophecyorb/internal/submission/service"
	"prophecyorb/internal/upload"
	"prophecyorb/middleware"
	"prophecyorb/socket"
)

func Setup(db *sql.DB, hub *socket.Hub, uploads *upload.Store) http.Handler {
	mux := http.NewServeMux()

	// WebSocket: live vision counts for open orb pages.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	})

	subRepo := repository.NewSubmissionRepository(db)
	subService := service.NewSubmissionService(subRepo, hub)
	h := subHandler.NewSubmissionHandler(subService, uploads)

	// Pages
	mux.HandleFunc("/", h.InputPage)
	mux.HandleFunc("/input", h.InputPage)
	mux.HandleFunc("/orb", h.OrbPage)

	// API
	mux.HandleFunc("/api/submit", h.Submit)
	mux.HandleFunc("/api/scry", h.Scry)
	mux.HandleFunc("/api/stats", h.Stats)

	// Stored doodles
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", noListing(http.FileServer(http.Dir(uploads.Dir)))))

	return middleware.CORSMiddleware(mux)
}

// noListing blocks directory indexes so stored filenames stay unguessable.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

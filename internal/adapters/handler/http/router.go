package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/vncsmyrnk/salesvote/internal/adapters/handler/http/docs"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

func NewHandler(
	authService ports.AuthService,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	voteHandler *VoteHandler,
	salesHandler *SalesHandler,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(Authenticate(authService))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
		r.Post("/signout", authHandler.SignOut)
	})
	r.Post("/oauth/google", authHandler.GoogleCallback)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Get("/candidates", voteHandler.ListCandidates)
		r.Get("/results", voteHandler.Results)
		r.Get("/sales", salesHandler.GetSales)

		r.Group(func(r chi.Router) {
			r.Use(RequireIdentity)
			r.Get("/me", userHandler.GetMe)
			r.Get("/votes/me", voteHandler.GetMyVote)
			r.Post("/votes", voteHandler.CastVote)
			r.Post("/sales/reload", salesHandler.Reload)
		})
	})

	return r
}

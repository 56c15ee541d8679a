package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"foodgram/internal/handlers"
	applog "foodgram/internal/log"
)

var defaultAllowedOrigins = []string{"*"}

func newRouter(corsCfg CORSConfig, session func(http.Handler) http.Handler) http.Handler {
	origins := corsCfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if session != nil {
		r.Use(session)
	}

	applog.Debug(context.Background(), "registering http routes")

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", handlers.Health)

		r.Post("/auth/login", handlers.Login)
		r.Post("/auth/logout", handlers.Logout)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", handlers.ListUsers)
			r.Post("/", handlers.Signup)
			r.Get("/{id}", handlers.UserDetail)

			r.Group(func(r chi.Router) {
				r.Use(handlers.RequireAuthentication)
				r.Get("/me", handlers.Me)
				r.Post("/set_password", handlers.SetPassword)
				r.Get("/subscriptions", handlers.Subscriptions)
				r.Post("/{id}/subscribe", handlers.Subscribe)
				r.Delete("/{id}/subscribe", handlers.Unsubscribe)
			})
		})

		r.Get("/tags", handlers.ListTags)
		r.Get("/tags/{id}", handlers.TagDetail)
		r.Get("/ingredients", handlers.ListIngredients)
		r.Get("/ingredients/{id}", handlers.IngredientDetail)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", handlers.ListRecipes)
			r.Get("/{id}", handlers.RecipeDetail)

			r.Group(func(r chi.Router) {
				r.Use(handlers.RequireAuthentication)
				r.Post("/", handlers.CreateRecipe)
				r.Get("/download_shopping_cart", handlers.DownloadShoppingCart)
				r.Put("/{id}", handlers.UpdateRecipe)
				r.Patch("/{id}", handlers.UpdateRecipe)
				r.Delete("/{id}", handlers.DeleteRecipe)
				r.Post("/{id}/favorite", handlers.AddFavorite)
				r.Delete("/{id}/favorite", handlers.RemoveFavorite)
				r.Post("/{id}/shopping_cart", handlers.AddToShoppingCart)
				r.Delete("/{id}/shopping_cart", handlers.RemoveFromShoppingCart)
			})
		})
	})

	return r
}

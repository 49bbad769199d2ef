package routes

import (
	"github.com/Dosada05/prediction-league/handlers"
	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Team        *handlers.TeamHandler
	Round       *handlers.RoundHandler
	Game        *handlers.GameHandler
	Prediction  *handlers.PredictionHandler
	Result      *handlers.ResultHandler
	Leaderboard *handlers.LeaderboardHandler
	WebSocket   *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret string) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticator(jwtSecret)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", h.User.GetUser)
		r.Get("/{userID}/stats", h.Leaderboard.GetUserStats)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Patch("/{userID}", h.User.UpdateProfile)
			r.Post("/{userID}/avatar", h.User.UploadAvatar)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Get("/", h.User.ListUsers)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.ListTeams)
		r.Get("/{teamID}", h.Team.GetTeam)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", h.Team.CreateTeam)
			r.Put("/{teamID}", h.Team.UpdateTeam)
			r.Delete("/{teamID}", h.Team.DeleteTeam)
			r.Post("/{teamID}/logo", h.Team.UploadTeamLogo)
		})
	})

	router.Route("/rounds", func(r chi.Router) {
		r.Get("/", h.Round.ListRounds)
		r.Get("/{roundID}", h.Round.GetRound)
		r.Get("/{roundID}/leaderboard", h.Leaderboard.GetRoundLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", h.Round.CreateRound)
			r.Put("/{roundID}", h.Round.UpdateRound)
			r.Delete("/{roundID}", h.Round.DeleteRound)
		})
	})

	router.Route("/games", func(r chi.Router) {
		r.Get("/", h.Game.ListGames)
		r.Get("/{gameID}", h.Game.GetGame)
		r.Get("/{gameID}/result", h.Result.GetResult)

		// Прогнозы принимаются от любого аутентифицированного игрока.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{gameID}/predictions", h.Prediction.CreatePrediction)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", h.Game.CreateGame)
			r.Put("/{gameID}", h.Game.UpdateGame)
			r.Delete("/{gameID}", h.Game.DeleteGame)
			r.Get("/{gameID}/predictions", h.Prediction.ListGamePredictions)

			r.Post("/{gameID}/result", h.Result.RecordResult)
			r.Put("/{gameID}/result", h.Result.CorrectResult)
			r.Post("/{gameID}/result/finalize", h.Result.FinalizeResult)
			r.Post("/{gameID}/recompute", h.Result.RecomputeGame)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/predictions/my", h.Prediction.ListMyPredictions)
	})

	router.Get("/leaderboard", h.Leaderboard.GetAllTimeLeaderboard)

	router.Get("/ws/leaderboard", h.WebSocket.ServeLeaderboard)
	router.Get("/ws/rounds/{roundID}", h.WebSocket.ServeRound)
}

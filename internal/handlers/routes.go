package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.Limiter}
	friends := FriendHandler{Friends: deps.Friends, Sessions: deps.Sessions}
	matching := MatchmakingHandler{Sessions: deps.Sessions, Matchmaking: deps.Matchmaking}
	posts := PostHandler{Posts: deps.Posts, Users: deps.Users, Sessions: deps.Sessions}
	uploads := UploadHandler{Images: deps.Images}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/auth/password-reset", auth.RequestPasswordReset)
	mux.HandleFunc("/api/v1/matchmaking", matching.State)
	mux.HandleFunc("/api/v1/matchmaking/start", matching.Start)
	mux.HandleFunc("/api/v1/matchmaking/next", matching.Next)
	mux.HandleFunc("/api/v1/matchmaking/skip", matching.Skip)
	mux.HandleFunc("/api/v1/matchmaking/connect", matching.Connect)
	mux.HandleFunc("/api/v1/friends", friends.List)
	mux.HandleFunc("/api/v1/friends/respond", friends.Respond)
	mux.HandleFunc("/api/v1/posts", posts.Handle)
	mux.HandleFunc("/api/v1/uploads/pet-image", uploads.PetImage)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users       UserStore
	Sessions    SessionManager
	Friends     FriendStore
	Posts       PostStore
	Matchmaking Matchmaker
	Images      ImageStorage
	Limiter     RateLimiter
}

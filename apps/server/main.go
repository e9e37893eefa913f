package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"pokerhall/apps/server/internal/auth"
	"pokerhall/apps/server/internal/gateway"
	"pokerhall/apps/server/internal/history"
	"pokerhall/apps/server/internal/lobby"
	"pokerhall/apps/server/internal/table"
)

func main() {
	_ = godotenv.Load()

	authService, authMode, err := auth.NewServiceFromEnv()
	if err != nil {
		log.Fatalf("[Server] Auth init failed: %v", err)
	}
	defer authService.Close()
	log.Printf("[Server] Auth mode: %s", authMode)

	store, historyMode, err := history.NewStoreFromEnv()
	if err != nil {
		log.Fatalf("[Server] History store init failed: %v", err)
	}
	defer store.Close()
	log.Printf("[Server] History mode: %s", historyMode)

	lby := lobby.New(table.Config{}, store, 0)
	defer lby.Stop()

	gw := gateway.New(lby, authService)

	r := chi.NewRouter()
	r.Get("/ws", gw.HandleWebSocket)
	r.Get("/api/health", handleHealth)
	r.Post("/api/register", handleRegister(authService))
	r.Post("/api/login", handleLogin(authService))
	r.Post("/api/logout", handleLogout(authService))
	r.Get("/api/games", handleListGames(lby))
	r.Get("/api/games/{gameID}/history", handleGameHistory(store))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("[Server] Listening on :%s", port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("[Server] ListenAndServe: %v", err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID uint64 `json:"user_id"`
	Token  string `json:"token"`
}

func handleRegister(svc auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		userID, token, err := svc.Register(req.Username, req.Password)
		if err != nil {
			writeError(w, authStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{UserID: userID, Token: token})
	}
}

func handleLogin(svc auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		userID, token, err := svc.Login(req.Username, req.Password)
		if err != nil {
			writeError(w, authStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{UserID: userID, Token: token})
	}
}

func handleLogout(svc auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			writeError(w, http.StatusBadRequest, "missing token")
			return
		}
		svc.Logout(token)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func handleListGames(lby *lobby.Lobby) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"games": lby.ListGames()})
	}
}

func handleGameHistory(store history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		hands, err := store.ListRecent(r.Context(), gameID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "history lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"game_id": gameID, "hands": hands})
	}
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Package ws exposes the chat engine over websocket connections plus the
// small HTTP surface of the identity provider.
package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"conversa/errors"
	"conversa/services"

	authpkg "conversa/auth"
)

// SessionCookieName carries the login token back on websocket upgrades.
const SessionCookieName = "session-token"

type ServerConfig struct {
	Addr       string
	SendBuffer int
}

// Server wires the HTTP mux: the websocket chat route behind the auth
// middleware, and the register/login endpoints of the identity provider.
type Server struct {
	logger *slog.Logger
	chat   services.IChatService
	auth   services.IAuthService
	config ServerConfig
	wg     sync.WaitGroup
	http   *http.Server
	ctx    context.Context
}

func NewServer(logger *slog.Logger, rootCtx context.Context, config ServerConfig,
	chat services.IChatService, auth services.IAuthService, tokens *authpkg.TokenIssuer) *Server {
	s := &Server{
		logger: logger,
		chat:   chat,
		auth:   auth,
		config: config,
		ctx:    rootCtx,
	}

	mux := http.NewServeMux()
	requireAuth := NewAuthMiddleware(logger, tokens)
	mux.Handle("GET /ws/chat/{conversation}", requireAuth(http.HandlerFunc(s.upgradeHandler)))
	mux.HandleFunc("POST /auth/register", s.registerHandler)
	mux.HandleFunc("POST /auth/login", s.loginHandler)

	s.http = &http.Server{
		Addr:    config.Addr,
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return s.ctx
		},
	}
	return s
}

// Run serves until the root context is canceled, then shuts down.
func (s *Server) Run() error {
	go func() {
		s.logger.Info("Server starting", slog.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", slog.Any("error", err))
		}
	}()

	<-s.ctx.Done()
	return s.Shutdown()
}

// upgradeHandler accepts the websocket and hands the connection to a
// Session. The auth middleware already resolved the principal, so an
// unauthenticated request never reaches this point.
func (s *Server) upgradeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	conversation := r.PathValue("conversation")

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Error("Failed to accept websocket connection", slog.Any("error", err))
		return
	}

	session := NewSession(r.Context(), wsConn, s.chat, s.logger,
		claims.Username, conversation, s.config.SendBuffer)

	s.wg.Add(1)
	defer s.wg.Done()
	session.Run()
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := s.auth.Register(req.Username, req.Password)
	switch {
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case stderrors.Is(err, errors.ErrInvalidPassword):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		s.writeToken(w, token)
	}
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	switch {
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case err != nil:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		s.writeToken(w, token)
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return credentialsRequest{}, false
	}
	return req, true
}

func (s *Server) writeToken(w http.ResponseWriter, token services.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    string(token),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{Token: string(token)})
}

// Shutdown stops accepting requests and waits for live sessions to end.
// Session contexts descend from the root context, so cancellation has
// already reached them by the time Run calls this.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.wg.Wait()
	s.logger.Info("Server shut down gracefully.")
	return nil
}

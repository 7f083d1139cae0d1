package tcp

import (
	"fmt"

	"go.uber.org/zap"

	"cryptowallet/internal/middleware"
)

// HandlerFunc serves one command for the session of the issuing connection
type HandlerFunc func(sess *middleware.Session, args []string) string

// MiddlewareFunc wraps a HandlerFunc
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// Router maps command verbs to handlers
type Router struct {
	routes map[string]HandlerFunc
	logger *zap.Logger
}

// NewRouter creates an empty Router
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		routes: make(map[string]HandlerFunc),
		logger: logger,
	}
}

// Handle registers h for verb. Middleware runs in the order given.
func (r *Router) Handle(verb string, h HandlerFunc, mw ...MiddlewareFunc) {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	r.routes[verb] = h
}

// Dispatch runs the handler for cmd and always returns a response.
// A handler panic is logged and answered with ProblemOccurred.
func (r *Router) Dispatch(sess *middleware.Session, cmd Command) (response string) {
	h, ok := r.routes[cmd.Verb]
	if !ok {
		return UnknownCommand
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("command handler panicked",
				zap.String("verb", cmd.Verb),
				zap.String("conn_id", sess.ConnID),
				zap.Error(fmt.Errorf("%v", rec)),
			)
			response = ProblemOccurred
		}
	}()

	response = h(sess, cmd.Args)
	if response == "" {
		response = ProblemOccurred
	}
	return response
}

// RequireSession rejects guest connections
func RequireSession(next HandlerFunc) HandlerFunc {
	return func(sess *middleware.Session, args []string) string {
		if !sess.LoggedIn() {
			return MustLogin
		}
		return next(sess, args)
	}
}

// RequireGuest rejects connections that are already logged in
func RequireGuest(next HandlerFunc) HandlerFunc {
	return func(sess *middleware.Session, args []string) string {
		if sess.LoggedIn() {
			return AlreadyLoggedIn
		}
		return next(sess, args)
	}
}

// ExactArgs rejects commands that do not carry exactly n arguments
func ExactArgs(n int) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(sess *middleware.Session, args []string) string {
			if len(args) != n {
				return InvalidArguments
			}
			return next(sess, args)
		}
	}
}

// SetupRoutes registers every wallet command on r
func SetupRoutes(r *Router, h *Handler) {
	// Public commands
	r.Handle("help", h.Help)
	r.Handle("shutdown", h.Shutdown)

	// Guest only
	r.Handle("register", h.Register, RequireGuest, ExactArgs(2))
	r.Handle("login", h.Login, RequireGuest, ExactArgs(2))

	// Logged in only
	r.Handle("deposit", h.Deposit, RequireSession, ExactArgs(1))
	r.Handle("list-offerings", h.ListOfferings, RequireSession, ExactArgs(0))
	r.Handle("buy", h.Buy, RequireSession, ExactArgs(2))
	r.Handle("sell", h.Sell, RequireSession, ExactArgs(1))
	r.Handle("get-wallet-summary", h.WalletSummary, RequireSession, ExactArgs(0))
	r.Handle("get-wallet-overall-summary", h.WalletOverallSummary, RequireSession, ExactArgs(0))
	r.Handle("disconnect", h.Disconnect, RequireSession, ExactArgs(0))
}

package tcp

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"cryptowallet/internal/domain"
	"cryptowallet/internal/middleware"
	"cryptowallet/internal/usecase"
)

// helpText lists every command a client can send
var helpText = strings.Join([]string{
	"Available commands: ",
	"register {name} {password}",
	"login {name} {password}",
	"deposit {amount}",
	"list-offerings",
	"buy {id} {amount}",
	"sell {id}",
	"get-wallet-summary",
	"get-wallet-overall-summary",
	"disconnect",
	"help",
	"shutdown",
}, domain.LineSeparator) + domain.LineSeparator

// Handler executes wallet commands against the account store and the catalog.
// Every method runs on the dispatch loop.
type Handler struct {
	accounts *usecase.AccountService
	sessions *middleware.Registry
	catalog  *domain.Catalog
	logger   *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(
	accounts *usecase.AccountService,
	sessions *middleware.Registry,
	catalog *domain.Catalog,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		accounts: accounts,
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// Help handles: help
func (h *Handler) Help(_ *middleware.Session, _ []string) string {
	return helpText
}

// Shutdown handles: shutdown
// The server stops once this response has been written.
func (h *Handler) Shutdown(sess *middleware.Session, _ []string) string {
	h.logger.Info("shutdown requested", zap.String("conn_id", sess.ConnID))
	return ShutdownMessage
}

// Register handles: register {name} {password}
func (h *Handler) Register(sess *middleware.Session, args []string) string {
	username, password := args[0], args[1]

	if _, err := h.accounts.Register(username, password); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return AccountExists
		}
		h.logger.Error("failed to register account", zap.String("username", username), zap.Error(err))
		return ProblemOccurred
	}

	h.logger.Info("account registered", zap.String("username", username), zap.String("conn_id", sess.ConnID))
	return RegisteredSuccessfully
}

// Login handles: login {name} {password}
func (h *Handler) Login(sess *middleware.Session, args []string) string {
	username, password := args[0], args[1]

	user, err := h.accounts.Authenticate(username, password)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return AccountDoesNotExist
	case errors.Is(err, domain.ErrWrongPassword):
		return InvalidPassword
	case err != nil:
		h.logger.Error("failed to authenticate", zap.String("username", username), zap.Error(err))
		return ProblemOccurred
	}

	if err := h.sessions.Attach(sess, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyLoggedIn) {
			return AlreadyLoggedIn
		}
		return ProblemOccurred
	}

	h.logger.Info("user logged in", zap.String("username", username), zap.String("conn_id", sess.ConnID))
	return LoggedSuccessfully
}

// Disconnect handles: disconnect
func (h *Handler) Disconnect(sess *middleware.Session, _ []string) string {
	username := sess.User().Username
	h.sessions.Detach(sess)

	h.logger.Info("user disconnected", zap.String("username", username), zap.String("conn_id", sess.ConnID))
	return DisconnectedSuccessfully
}

// Deposit handles: deposit {amount}
func (h *Handler) Deposit(sess *middleware.Session, args []string) string {
	amount, err := domain.ParseAmount(args[0])
	if err != nil {
		return InvalidAmountArgument
	}

	if err := sess.User().Wallet.Deposit(amount); err != nil {
		return h.ledgerError("deposit", sess, err)
	}
	return SuccessfulOperation
}

// ListOfferings handles: list-offerings
func (h *Handler) ListOfferings(_ *middleware.Session, _ []string) string {
	return h.catalog.ListOfferings()
}

// Buy handles: buy {id} {amount}
func (h *Handler) Buy(sess *middleware.Session, args []string) string {
	id := args[0]
	amount, err := domain.ParseAmount(args[1])
	if err != nil {
		return InvalidAmountArgument
	}

	if err := sess.User().Wallet.Buy(id, amount, h.catalog); err != nil {
		return h.ledgerError("buy", sess, err)
	}
	return SuccessfulOperation
}

// Sell handles: sell {id}
func (h *Handler) Sell(sess *middleware.Session, args []string) string {
	if err := sess.User().Wallet.Sell(args[0], h.catalog); err != nil {
		return h.ledgerError("sell", sess, err)
	}
	return SuccessfulOperation
}

// WalletSummary handles: get-wallet-summary
func (h *Handler) WalletSummary(sess *middleware.Session, _ []string) string {
	return sess.User().Wallet.Summary()
}

// WalletOverallSummary handles: get-wallet-overall-summary
func (h *Handler) WalletOverallSummary(sess *middleware.Session, _ []string) string {
	return sess.User().Wallet.OverallSummary(h.catalog)
}

// ledgerError maps a wallet error to its response text
func (h *Handler) ledgerError(op string, sess *middleware.Session, err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return InvalidAmountArgument
	case errors.Is(err, domain.ErrNegativeAmount):
		return NegativeAmount
	case errors.Is(err, domain.ErrInsufficientBalance):
		return InsufficientAmount
	case errors.Is(err, domain.ErrAssetNotFound):
		return AssetDoesNotExist
	case errors.Is(err, domain.ErrNotPurchased):
		return AssetNotPurchased
	}

	h.logger.Error("unexpected ledger error",
		zap.String("op", op),
		zap.String("username", sess.User().Username),
		zap.Error(err),
	)
	return ProblemOccurred
}

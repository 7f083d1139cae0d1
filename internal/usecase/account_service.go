package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cryptowallet/internal/domain"
)

// AccountService owns every registered user for the lifetime of the process.
// Accounts are loaded from the store once at startup and written back once at
// shutdown; in between they are only touched from the dispatch loop.
type AccountService struct {
	repo     domain.UserRepository
	logger   *zap.Logger
	users    map[string]*domain.User
	hashCost int
}

// AccountOption configures an AccountService
type AccountOption func(*AccountService)

// WithHashCost overrides the bcrypt cost used for new passwords
func WithHashCost(cost int) AccountOption {
	return func(s *AccountService) {
		s.hashCost = cost
	}
}

// NewAccountService creates a new AccountService
func NewAccountService(repo domain.UserRepository, logger *zap.Logger, opts ...AccountOption) *AccountService {
	s := &AccountService{
		repo:     repo,
		logger:   logger,
		users:    make(map[string]*domain.User),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory accounts with the store's contents
func (s *AccountService) Load(ctx context.Context) error {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	users := make(map[string]*domain.User, len(records))
	for _, rec := range records {
		if _, dup := users[rec.Username]; dup {
			s.logger.Warn("duplicate account record skipped", zap.String("username", rec.Username))
			continue
		}
		users[rec.Username] = domain.UserFromRecord(rec)
	}
	s.users = users

	s.logger.Info("accounts loaded", zap.Int("count", len(users)))
	return nil
}

// Persist writes every account back to the store
func (s *AccountService) Persist(ctx context.Context) error {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]domain.UserRecord, 0, len(names))
	for _, name := range names {
		records = append(records, s.users[name].Record())
	}

	if err := s.repo.SaveAll(ctx, records); err != nil {
		return fmt.Errorf("failed to persist accounts: %w", err)
	}

	s.logger.Info("accounts persisted", zap.Int("count", len(records)))
	return nil
}

// Register creates a new account with an empty wallet
func (s *AccountService) Register(username, password string) (*domain.User, error) {
	if _, exists := s.users[username]; exists {
		return nil, domain.ErrAccountExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(username, string(hashedPassword))
	s.users[username] = user
	return user, nil
}

// Authenticate checks the credentials and returns the matching user
func (s *AccountService) Authenticate(username, password string) (*domain.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, domain.ErrWrongPassword
	}
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return user, nil
}

// Lookup returns a registered user by username
func (s *AccountService) Lookup(username string) (*domain.User, bool) {
	user, ok := s.users[username]
	return user, ok
}

// Len returns the number of registered accounts
func (s *AccountService) Len() int {
	return len(s.users)
}

// Package sandbox is a local stand-in for the SnapTrade API. It verifies
// request signatures exactly as the remote service does and serves a small,
// in-memory brokerage so integrations can be exercised offline.
package sandbox

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tjfontaine/snaptrade-go/internal/auth"
	"github.com/tjfontaine/snaptrade-go/internal/server"
	"github.com/tjfontaine/snaptrade-go/internal/storage"
	"github.com/tjfontaine/snaptrade-go/internal/storage/memory"
	"github.com/tjfontaine/snaptrade-go/pkg/snaptrade"
)

// APIVersion is reported by the status endpoint.
const APIVersion = 151

// DefaultCash is the USD balance seeded into each new user's account.
var DefaultCash = decimal.NewFromInt(10000)

var currencies = []snaptrade.Currency{
	{ID: "57f81c53-bdda-45a7-a51f-032afd1ae41b", Code: "USD", Name: "US Dollar"},
	{ID: "87b24961-b51e-4db8-9226-f198f6518a89", Code: "CAD", Name: "Canadian Dollar"},
}

// Options configures a Sandbox.
type Options struct {
	// Partners maps clientId to consumer key.
	Partners map[string]string
	// Skew is the accepted timestamp drift. Zero uses auth.DefaultSkew.
	Skew time.Duration
	// Users persists registered users. Defaults to an in-memory store.
	Users storage.UserStore
	Now   func() time.Time
}

// Sandbox serves the emulated API.
type Sandbox struct {
	verifier *auth.Verifier
	users    storage.UserStore
	now      func() time.Time

	mu        sync.RWMutex
	accounts  map[string][]snaptrade.Account // userId -> accounts
	balances  map[string][]snaptrade.Balance // accountId -> balances
	positions map[string][]snaptrade.Position
}

// New creates a sandbox for the given partners.
func New(opts Options) (*Sandbox, error) {
	if len(opts.Partners) == 0 {
		return nil, errors.New("at least one partner required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Users == nil {
		opts.Users = memory.New()
	}

	verifier, err := auth.NewVerifier(opts.Partners, auth.WithSkew(opts.Skew), auth.WithClock(opts.Now))
	if err != nil {
		return nil, fmt.Errorf("failed to create verifier: %w", err)
	}

	return &Sandbox{
		verifier:  verifier,
		users:     opts.Users,
		now:       opts.Now,
		accounts:  make(map[string][]snaptrade.Account),
		balances:  make(map[string][]snaptrade.Balance),
		positions: make(map[string][]snaptrade.Position),
	}, nil
}

// NewServer builds an HTTP server with the sandbox mounted on its router.
func NewServer(addr string, logger *slog.Logger, opts Options) (*server.Server, error) {
	sb, err := New(opts)
	if err != nil {
		return nil, err
	}
	srv := server.New(addr, logger)
	sb.Mount(srv.Router)
	return srv, nil
}

// Mount registers every sandbox route on r.
func (s *Sandbox) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(server.SignatureMiddleware(s.verifier, writeAuthError))

		r.Get("/api/v1/", s.handleStatus)
		r.Get("/api/v1/currencies", s.handleCurrencies)

		r.Route("/api/v1/snapTrade", func(r chi.Router) {
			r.Post("/registerUser", s.handleRegisterUser)
			r.Get("/listUsers", s.handleListUsers)
			r.With(s.requireUser).Post("/deleteUser", s.handleDeleteUser)
			r.With(s.requireUser).Post("/login", s.handleLogin)
		})

		r.Route("/api/v1/accounts", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.handleListAccounts)
			r.Get("/{accountID}", s.handleAccount)
			r.Get("/{accountID}/balances", s.handleBalances)
			r.Get("/{accountID}/positions", s.handlePositions)
		})
	})
}

// SeedAccount opens an account for userID holding cash in USD.
func (s *Sandbox) SeedAccount(userID, name string, cash decimal.Decimal) snaptrade.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seedLocked(userID, name, cash)
}

// ensureAccounts seeds the default account for a stored user that has none.
// Accounts live in memory, so users loaded from a persistent store after a
// restart start out empty.
func (s *Sandbox) ensureAccounts(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.accounts[userID]) == 0 {
		s.seedLocked(userID, "Individual", DefaultCash)
	}
}

func (s *Sandbox) seedLocked(userID, name string, cash decimal.Decimal) snaptrade.Account {
	authorizationID, _ := json.Marshal(uuid.New().String())
	account := snaptrade.Account{
		ID:                     uuid.New().String(),
		BrokerageAuthorization: authorizationID,
		Name:                   name,
		Number:                 fmt.Sprintf("SBX-%06d", s.now().Unix()%1000000),
		InstitutionName:        "Sandbox Brokerage",
		CreatedDate:            s.now().UTC().Format(time.RFC3339),
	}

	s.accounts[userID] = append(s.accounts[userID], account)
	s.balances[account.ID] = []snaptrade.Balance{{
		Currency:    currencies[0],
		Cash:        decimal.NewNullDecimal(cash),
		BuyingPower: decimal.NewNullDecimal(cash),
	}}
	s.positions[account.ID] = []snaptrade.Position{}
	return account
}

func (s *Sandbox) dropUserAccounts(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts[userID] {
		delete(s.balances, account.ID)
		delete(s.positions, account.ID)
	}
	delete(s.accounts, userID)
}

type userKey struct{}

// requireUser authenticates the end user named by userId/userSecret.
func (s *Sandbox) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		userID, secret := query.Get("userId"), query.Get("userSecret")
		if userID == "" || secret == "" {
			writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, "userId and userSecret are required")
			return
		}

		user, err := s.users.GetUser(r.Context(), userID)
		if err != nil || subtle.ConstantTimeCompare([]byte(user.Secret), []byte(secret)) != 1 {
			if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
				server.AddError(r.Context(), err)
			}
			writeError(w, r, http.StatusUnauthorized, CodeInvalidUserSecret, "Invalid userID or userSecret provided")
			return
		}

		server.AddLogField(r.Context(), "user_id", userID)
		s.ensureAccounts(userID)
		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) *storage.User {
	user, _ := ctx.Value(userKey{}).(*storage.User)
	return user
}

func (s *Sandbox) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snaptrade.APIStatus{
		Version:   APIVersion,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		Online:    true,
	})
}

func (s *Sandbox) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currencies)
}

func (s *Sandbox) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, "Request body must be a JSON object")
		return
	}
	if req.UserID == "" {
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, "userId is required")
		return
	}

	if _, err := s.users.GetUser(r.Context(), req.UserID); err == nil {
		writeError(w, r, http.StatusBadRequest, CodeUserExists, "User with the following userId already exist: "+req.UserID)
		return
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		server.AddError(r.Context(), err)
		writeError(w, r, http.StatusInternalServerError, CodeInvalidRequest, "Unable to register user")
		return
	}

	user := &storage.User{ID: req.UserID, Secret: uuid.New().String()}
	if err := s.users.SaveUser(r.Context(), user); err != nil {
		server.AddError(r.Context(), err)
		writeError(w, r, http.StatusInternalServerError, CodeInvalidRequest, "Unable to register user")
		return
	}
	s.ensureAccounts(user.ID)

	server.AddLogField(r.Context(), "user_id", user.ID)
	writeJSON(w, http.StatusOK, snaptrade.RegisteredUser{UserID: user.ID, UserSecret: user.Secret})
}

func (s *Sandbox) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		server.AddError(r.Context(), err)
		writeError(w, r, http.StatusInternalServerError, CodeInvalidRequest, "Unable to list users")
		return
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Sandbox) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if err := s.users.DeleteUser(r.Context(), user.ID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			writeError(w, r, http.StatusNotFound, CodeUserNotFound, "User not found")
			return
		}
		server.AddError(r.Context(), err)
		writeError(w, r, http.StatusInternalServerError, CodeInvalidRequest, "Unable to delete user")
		return
	}
	s.dropUserAccounts(user.ID)

	writeJSON(w, http.StatusOK, snaptrade.DeletedUser{
		Status: "deleted",
		Detail: "User " + user.ID + " deleted",
		UserID: user.ID,
	})
}

func (s *Sandbox) handleLogin(w http.ResponseWriter, r *http.Request) {
	var opts snaptrade.LoginOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, "Request body must be a JSON object")
		return
	}

	sessionID := uuid.New().String()
	redirect := url.URL{Scheme: "http", Host: r.Host, Path: "/connect/" + sessionID}
	q := redirect.Query()
	if opts.Broker != "" {
		q.Set("broker", opts.Broker)
	}
	if opts.CustomRedirect != "" {
		q.Set("customRedirect", opts.CustomRedirect)
	}
	redirect.RawQuery = q.Encode()

	writeJSON(w, http.StatusOK, snaptrade.LoginRedirect{RedirectURI: redirect.String(), SessionID: sessionID})
}

func (s *Sandbox) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	s.mu.RLock()
	accounts := append([]snaptrade.Account{}, s.accounts[user.ID]...)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, accounts)
}

// lookupAccount resolves the {accountID} route parameter within the caller's
// accounts and writes a 404 when it is not theirs.
func (s *Sandbox) lookupAccount(w http.ResponseWriter, r *http.Request) (snaptrade.Account, bool) {
	user := userFrom(r.Context())
	accountID, err := url.PathUnescape(chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, "Invalid account ID")
		return snaptrade.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts[user.ID] {
		if account.ID == accountID {
			return account, true
		}
	}
	writeError(w, r, http.StatusNotFound, CodeAccountNotFound, "Unable to find account with ID "+accountID)
	return snaptrade.Account{}, false
}

func (s *Sandbox) handleAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Sandbox) handleBalances(w http.ResponseWriter, r *http.Request) {
	account, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}

	s.mu.RLock()
	balances := append([]snaptrade.Balance{}, s.balances[account.ID]...)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, balances)
}

func (s *Sandbox) handlePositions(w http.ResponseWriter, r *http.Request) {
	account, ok := s.lookupAccount(w, r)
	if !ok {
		return
	}

	s.mu.RLock()
	positions := append([]snaptrade.Position{}, s.positions[account.ID]...)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, positions)
}

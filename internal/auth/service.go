package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// AccountStore is the persistence the account service needs.
type AccountStore interface {
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Signin failures. Both are KindUnauthorized.
var (
	ErrInvalidCredentials = &model.Error{Kind: model.KindUnauthorized, Message: "invalid email or password"}
	ErrAccountBanned      = &model.Error{Kind: model.KindUnauthorized, Message: "account is banned"}
)

// Accounts handles signup, signin and signout.
type Accounts struct {
	store  AccountStore
	tokens *Tokens
	ttl    time.Duration
}

// NewAccounts returns an account service that issues tokens valid for ttl.
func NewAccounts(s AccountStore, tokens *Tokens, ttl time.Duration) *Accounts {
	return &Accounts{store: s, tokens: tokens, ttl: ttl}
}

// SignupRequest carries the fields a new account needs. All are required.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

func (r *SignupRequest) validate() error {
	r.Email = strings.TrimSpace(r.Email)
	required := []struct{ name, value string }{
		{"email", r.Email},
		{"password", r.Password},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"phone_number", r.PhoneNumber},
		{"address", r.Address},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return model.InvalidArgumentf("%s is required", f.name)
		}
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return model.InvalidArgumentf("email should be valid")
	}
	return model.ValidatePassword(r.Password)
}

// SigninResult is returned by a successful signin.
type SigninResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Signup creates a regular, unbanned account.
func (a *Accounts) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	existing, err := a.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.InvalidArgumentf("email is already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := a.store.CreateUser(ctx, &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
	})
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race with a concurrent signup for the same address.
		return nil, model.InvalidArgumentf("email is already in use")
	}
	if err != nil {
		return nil, err
	}

	slog.Info("user signed up", "user", user.Email, "id", user.ID)
	return user, nil
}

// Signin checks credentials and issues a token.
func (a *Accounts) Signin(ctx context.Context, email, password string) (*SigninResult, error) {
	if email == "" || password == "" {
		return nil, model.InvalidArgumentf("email and password required")
	}

	user, err := a.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("signin failed", "user", email)
		return nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		slog.Warn("banned user tried to sign in", "user", user.Email)
		return nil, ErrAccountBanned
	}

	token, err := a.tokens.Issue(user.ID, user.Email, user.IsAdmin, a.ttl)
	if err != nil {
		return nil, err
	}

	slog.Info("user signed in", "user", user.Email, "admin", user.IsAdmin)
	return &SigninResult{Token: token, User: user}, nil
}

// Signout revokes the token the claims came from.
func (a *Accounts) Signout(ctx context.Context, claims *Claims) error {
	expires := time.Now().Add(a.ttl)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := a.store.RevokeToken(ctx, claims.RegisteredClaims.ID, expires); err != nil {
		return err
	}

	slog.Info("user signed out", "user", claims.Email)
	return nil
}

// Authenticate verifies a bearer token and rejects revoked ones.
func (a *Accounts) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	revoked, err := a.store.IsTokenRevoked(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, model.Unauthorizedf("token has been revoked")
	}
	return claims, nil
}

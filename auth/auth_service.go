// Package auth runs the login, registration and logout flows. A successful
// flow ends with the Session Manager holding the user and access token.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-hospital-client/gateway"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/sessions"
	"github.com/jrsteele09/go-hospital-client/token"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	loginPath    = "/api/auth/login/"
	registerPath = "/api/auth/register/"
)

type AuthorizationService struct {
	api      *gateway.Client
	users    *users.Client
	sessions *sessions.Manager
	nowTime  func() time.Time
	log      zerolog.Logger
}

type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

func WithLogger(l zerolog.Logger) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.log = l
	}
}

func NewAuthorizationService(api *gateway.Client, mgr *sessions.Manager, options ...AuthorizationServiceOption) (*AuthorizationService, error) {
	if api == nil {
		return nil, errors.New("[NewAuthorizationService] gateway client is required")
	}
	if mgr == nil {
		return nil, errors.New("[NewAuthorizationService] session manager is required")
	}
	as := &AuthorizationService{
		api:      api,
		users:    users.NewClient(api),
		sessions: mgr,
		nowTime:  time.Now,
		log:      log.Logger,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Login exchanges credentials for tokens and establishes the session.
func (as *AuthorizationService) Login(ctx context.Context, params LoginParameters) (*users.User, TokenPair, error) {
	params.Email = strings.TrimSpace(params.Email)
	if err := params.Validate(); err != nil {
		return nil, TokenPair{}, err
	}
	var pair TokenPair
	if err := as.api.Post(ctx, loginPath, params, &pair); err != nil {
		return nil, TokenPair{}, err
	}
	user, err := as.establish(ctx, pair)
	return user, pair, err
}

// Register creates a patient account and logs it in.
func (as *AuthorizationService) Register(ctx context.Context, params RegisterParameters) (*users.User, TokenPair, error) {
	params.Email = strings.TrimSpace(params.Email)
	params.FullName = strings.TrimSpace(params.FullName)
	if err := params.Validate(); err != nil {
		return nil, TokenPair{}, err
	}
	var pair TokenPair
	if err := as.api.Post(ctx, registerPath, params, &pair); err != nil {
		return nil, TokenPair{}, err
	}
	user, err := as.establish(ctx, pair)
	return user, pair, err
}

func (as *AuthorizationService) Logout() {
	as.sessions.Logout()
}

// establish resolves the user behind a fresh token pair and hands both to
// the Session Manager. The user lookup carries the new token explicitly
// because no session exists yet.
func (as *AuthorizationService) establish(ctx context.Context, pair TokenPair) (*users.User, error) {
	if pair.Access == "" {
		return nil, MissingAccessTokenErr
	}
	claims, err := token.Decode(pair.Access)
	if err != nil {
		return nil, fmt.Errorf("[AuthorizationService establish] %w: %v", InvalidAccessTokenErr, err)
	}
	if claims.UserID <= 0 {
		return nil, MissingUserIDErr
	}
	if claims.Expired(as.nowTime()) {
		return nil, apperrors.ErrSessionExpired
	}

	user, err := as.users.Get(gateway.WithAccessToken(ctx, pair.Access), claims.UserID)
	if err != nil {
		as.log.Warn().Err(err).Int64("user_id", claims.UserID).Msg("failed to fetch user details")
		return nil, err
	}
	if !user.Valid() {
		return nil, UserRoleUnknownErr
	}

	if err := as.sessions.Login(*user, pair.Access); err != nil {
		return nil, err
	}
	as.sessions.StoreRefreshToken(pair.Refresh)
	as.log.Info().Int64("user_id", user.ID).Str("role", user.Role.String()).Msg("logged in")
	return user, nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/pintlog-backend/internal/data/repos"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

// JWTClaims is the access token issued by the hosted auth provider.
type JWTClaims struct {
	Email        string         `json:"email"`
	Role         string         `json:"role,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	jwt.RegisteredClaims
}

func (c *JWTClaims) displayName() string {
	for _, key := range []string{"name", "full_name", "display_name"} {
		if v, ok := c.UserMetadata[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if at := strings.Index(c.Email, "@"); at > 0 {
		return c.Email[:at]
	}
	return c.Email
}

func (c *JWTClaims) role() string {
	if v, ok := c.AppMetadata["role"].(string); ok && v != "" {
		return v
	}
	return c.Role
}

type AuthService interface {
	// SessionFromToken verifies the bearer token and returns ctx carrying the
	// caller's ctxutil.Session.
	SessionFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

type authService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	cfg      AuthConfig
	emitter  SSEEmitter

	// known holds profile ids already mirrored this process.
	known sync.Map
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, cfg AuthConfig, emitter SSEEmitter) AuthService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &authService{
		log:      log.With("service", "AuthService"),
		userRepo: userRepo,
		cfg:      cfg,
		emitter:  emitter,
	}
}

func (as *authService) SessionFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, apierr.Unauthorized(fmt.Errorf("missing bearer token"))
	}
	if as.cfg.Secret == "" {
		return ctx, apierr.Unauthorized(fmt.Errorf("token verification is not configured"))
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(as.cfg.Leeway),
	}
	if as.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(as.cfg.Issuer))
	}
	if as.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(as.cfg.Audience))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return ctx, apierr.Unauthorized(fmt.Errorf("invalid token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthorized(fmt.Errorf("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized(fmt.Errorf("invalid user id in token: %w", err))
	}

	session := &ctxutil.Session{
		UserID:   userID,
		UserName: claims.displayName(),
		Email:    claims.Email,
		Role:     claims.role(),
		Token:    tokenString,
	}
	if sid, err := uuid.Parse(claims.SessionID); err == nil {
		session.SessionID = sid
	}

	if err := as.ensureProfile(ctx, session); err != nil {
		return ctx, err
	}
	return ctxutil.WithSession(ctx, session), nil
}

// ensureProfile mirrors the token identity into app_user once per process.
func (as *authService) ensureProfile(ctx context.Context, s *ctxutil.Session) error {
	if _, seen := as.known.Load(s.UserID); seen {
		return nil
	}
	existing, err := as.userRepo.GetByID(ctx, nil, s.UserID)
	if err == nil {
		as.known.Store(s.UserID, struct{}{})
		if existing.Name != "" {
			s.UserName = existing.Name
		}
		return nil
	}
	if !apierr.HasCode(err, apierr.CodeNotFound) {
		return unavailable(err)
	}
	u, err := as.userRepo.Upsert(ctx, nil, &types.User{ID: s.UserID, Name: s.UserName, Email: s.Email})
	if err != nil {
		return unavailable(err)
	}
	as.known.Store(s.UserID, struct{}{})
	as.log.Info("profile created from token", "user_id", u.ID)
	as.emitter.Emit(ctx, rosterMessage(u))
	return nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mvaleed/mjcatalog/internal/auth"
	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/workflow"
)

// AuthService exchanges client credentials for access tokens.
type AuthService struct {
	clients []auth.Client
	jwt     *auth.JWTManager
	logger  *slog.Logger
}

func NewAuthService(clients []auth.Client, jwt *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{clients: clients, jwt: jwt, logger: logger}
}

// TokenRequest contains the client credentials.
type TokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// TokenResponse is returned after a successful exchange.
type TokenResponse struct {
	AccessToken      string   `json:"accessToken"`
	TokenType        string   `json:"tokenType"`
	ExpiresInSeconds int64    `json:"expiresIn"`
	Scopes           []string `json:"scopes"`
}

// IssueToken authenticates the client and signs a token with its scopes.
// Unknown clients and wrong secrets are indistinguishable to the caller.
func (s *AuthService) IssueToken(ctx context.Context, req TokenRequest) result.Result[TokenResponse] {
	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return p.
			Ensure(req.ClientID != "", result.BadRequest("clientId", "is required")).
			Ensure(req.ClientSecret != "", result.BadRequest("clientSecret", "is required"))
	})

	return workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[TokenResponse] {
		client, err := auth.Authenticate(s.clients, req.ClientID, req.ClientSecret)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidSecret) {
				s.logger.ErrorContext(ctx, "client authentication failed", slog.String("error", err.Error()))
			}
			return result.Fail[TokenResponse](result.Unauthorized("invalid client credentials"))
		}

		token, _, err := s.jwt.GenerateAccessToken(auth.TokenPayload{ClientID: client.ID, Scopes: client.Scopes})
		if err != nil {
			return result.Fail[TokenResponse](result.New(result.LayerInfrastructure, http.StatusInternalServerError,
				"signing access token: "+err.Error()))
		}

		return result.Ok(TokenResponse{
			AccessToken:      token,
			TokenType:        "Bearer",
			ExpiresInSeconds: int64(s.jwt.AccessTokenTTL().Seconds()),
			Scopes:           client.Scopes,
		})
	})
}

// ValidateToken validates an access token and returns the claims.
func (s *AuthService) ValidateToken(token string) result.Result[*auth.Claims] {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return result.Fail[*auth.Claims](result.Unauthorized(err.Error()))
	}
	return result.Ok(claims)
}

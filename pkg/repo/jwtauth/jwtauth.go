// Package jwtauth verifies RS256 identity tokens against a configured public key.
package jwtauth

import (
	"context"
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo"
)

type Claims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Phone      string `json:"phone_number"`
	jwt.RegisteredClaims
}

type verifier struct {
	key    *rsa.PublicKey
	parser *jwt.Parser
}

func New() (repo.IdentityProvider, error) {
	conf := config.Global().Auth
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(conf.JWTPublicKey))
	if err != nil {
		return nil, err
	}
	return NewWithKey(key, conf.JWTIssuer, conf.JWTAudience), nil
}

func NewWithKey(key *rsa.PublicKey, issuer, audience string) repo.IdentityProvider {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &verifier{key: key, parser: jwt.NewParser(opts...)}
}

func (v *verifier) Verify(ctx context.Context, token string) (*repo.Identity, error) {
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}); err != nil {
		logger.Warnf(ctx, "jwt verify err: %v", err)
		return nil, code.InvalidToken.WithErr(err)
	}
	if claims.Subject == "" {
		return nil, code.InvalidToken.WithMsg("token has no subject")
	}
	return &repo.Identity{
		UID:       claims.Subject,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Phone:     claims.Phone,
	}, nil
}

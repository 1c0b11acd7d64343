package providers

import (
	"postit/internal/models"
	"postit/internal/structures"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "postit"

type SessionProviderInterface interface {
	Issue(username string) (string, error)
	Parse(token string) (string, error)
}

// SessionProvider hands out signed bearer tokens whose subject is the
// username. Tokens carry no other state; the service re-checks the account
// on every call.
type SessionProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionProvider(conf *structures.Config) SessionProviderInterface {
	return &SessionProvider{
		secret: []byte(conf.Session.Secret),
		ttl:    conf.Session.TTL,
		now:    time.Now,
	}
}

func (sp *SessionProvider) Issue(username string) (string, error) {
	now := sp.now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sp.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sp.secret)
}

// Parse returns the username a valid token was issued for. Every failure is
// reported as models.ErrAuth.
func (sp *SessionProvider) Parse(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", &models.Error{Kind: models.KindAuth, Msg: "missing session token"}
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return sp.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(sp.now),
	)
	if err != nil {
		return "", &models.Error{Kind: models.KindAuth, Msg: "invalid session token"}
	}
	if claims.Subject == "" {
		return "", &models.Error{Kind: models.KindAuth, Msg: "session token has no subject"}
	}
	return claims.Subject, nil
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadToken = errors.New("bad result token")

// ResultSigner mints and checks HS256 tokens over finished round results so a
// host backend can tell a genuine result from one forged in the browser.
type ResultSigner struct{ hmac []byte }

// NewResultSigner returns nil for an empty secret; a nil signer signs nothing.
func NewResultSigner(secret string) *ResultSigner {
	if secret == "" {
		return nil
	}
	return &ResultSigner{hmac: []byte(secret)}
}

type ResultClaims struct {
	RoundID           string `json:"rid"`
	AnsweredCorrectly bool   `json:"ok"`
	CorrectMatches    int    `json:"correct"`
	TotalMatches      int    `json:"total"`
	jwt.RegisteredClaims
}

func (s *ResultSigner) Sign(questionID string, c ResultClaims) (string, error) {
	now := time.Now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    "mindengage-matchgame",
		Subject:   questionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Hour)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &c)
	return t.SignedString(s.hmac)
}

func (s *ResultSigner) Parse(tokenStr string) (*ResultClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ResultClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrBadToken, err)
	}
	c, ok := token.Claims.(*ResultClaims)
	if !ok || !token.Valid {
		return nil, ErrBadToken
	}
	return c, nil
}

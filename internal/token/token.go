// Package token issues and verifies the signed bearer tokens used for
// login sessions and password resets. HS256 with a process-wide secret
// injected at construction; no rotation.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mbevents/backend/internal/domain"
)

const (
	SessionTTL = 24 * time.Hour
	ResetTTL   = 15 * time.Minute

	resetPurpose = "password_reset"
)

// Claims is the subset of token claims the rest of the app cares about.
type Claims struct {
	UserID string
	Email  string
}

type Issuer struct {
	key []byte
	now func() time.Time
}

func NewIssuer(key []byte) *Issuer {
	return &Issuer{key: key, now: time.Now}
}

// IssueSession returns a signed login token embedding the user's ID and email.
func (i *Issuer) IssueSession(userID, email string) (string, error) {
	now := i.now()
	return i.sign(jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(SessionTTL).Unix(),
	})
}

// IssueReset returns a short-lived signed token authorizing a password reset.
func (i *Issuer) IssueReset(userID string) (string, error) {
	now := i.now()
	return i.sign(jwt.MapClaims{
		"sub":     userID,
		"purpose": resetPurpose,
		"iat":     now.Unix(),
		"exp":     now.Add(ResetTTL).Unix(),
	})
}

func (i *Issuer) sign(claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. Returns domain.ErrTokenInvalid for
// anything that does not pass, so callers never learn why.
func (i *Issuer) Verify(raw string) (Claims, error) {
	claims, err := i.parse(raw)
	if err != nil {
		return Claims{}, err
	}
	if claims["purpose"] == resetPurpose {
		return Claims{}, domain.ErrTokenInvalid
	}
	return mapClaims(claims)
}

// VerifyReset is Verify for reset tokens; it additionally requires the
// purpose claim so a login token can never reset a password.
func (i *Issuer) VerifyReset(raw string) (Claims, error) {
	claims, err := i.parse(raw)
	if err != nil {
		return Claims{}, err
	}
	if claims["purpose"] != resetPurpose {
		return Claims{}, domain.ErrTokenInvalid
	}
	return mapClaims(claims)
}

func (i *Issuer) parse(raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(i.now))
	if err != nil || !tok.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

func mapClaims(claims jwt.MapClaims) (Claims, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, domain.ErrTokenInvalid
	}
	email, _ := claims["email"].(string)
	return Claims{UserID: sub, Email: email}, nil
}

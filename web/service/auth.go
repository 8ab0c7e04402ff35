package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/allblack/allblack-panel/config"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService issues and verifies bearer tokens for API clients (kitchen
// displays, the table tablets) that can not keep a cookie session.
type AuthService struct {
	settingService SettingService
}

func (s *AuthService) secret() ([]byte, error) {
	if secret := config.GetJWTSecret(); secret != "" {
		return []byte(secret), nil
	}
	return s.settingService.GetSecret()
}

// IssueToken signs an HS256 token carrying identity.
func (s *AuthService) IssueToken(identity entity.Identity) (string, time.Time, error) {
	secret, err := s.secret()
	if err != nil {
		return "", time.Time{}, err
	}
	ttl, err := s.settingService.GetTokenTTL()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"id":       identity.Id,
		"username": identity.Username,
		"role":     string(identity.Role),
		"exp":      exp.Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	return tok, exp, err
}

// ParseToken verifies tok and returns the identity it carries.
func (s *AuthService) ParseToken(tok string) (entity.Identity, error) {
	secret, err := s.secret()
	if err != nil {
		return entity.Identity{}, err
	}
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return entity.Identity{}, ErrInvalidCredentials
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Identity{}, ErrInvalidCredentials
	}

	id, _ := claims["id"].(float64)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	identity := entity.Identity{Id: int(id), Username: username, Role: model.Role(role)}
	if identity.Id == 0 || !identity.Role.Valid() {
		return entity.Identity{}, errors.Join(ErrInvalidCredentials, errors.New("malformed token claims"))
	}
	return identity, nil
}

package security

import (
	"errors"
	"gitgud_server/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenAuth verifies bearer tokens minted by the external auth provider.
// This service never issues tokens itself.
var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	// The auth provider puts the user id in "sub"; older tokens used "user_id".
	if id, ok := claims["sub"].(string); ok && id != "" {
		return id, nil
	}
	if id, ok := claims["user_id"].(string); ok && id != "" {
		return id, nil
	}
	return "", errors.New("subject claim is missing or not a string")
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "user", nil
	}
	return role, nil
}

package security

import (
	"errors"
	"time"

	"github.com/cancer-not-cancer/api/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateAPIToken issues a bearer token for scripted clients. Claims
// carry the user id and the legacy permission bitmask.
func GenerateAPIToken(userID int64, permissionMask int) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     userID,
		"permissions": permissionMask,
		"exp":         time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":         time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// GenerateStateToken signs the OAuth state parameter. The origin URL of
// the request that triggered login rides along so the callback can
// resume it, replacing the legacy session-stored origin.
func GenerateStateToken(origin string) (string, error) {
	claims := jwt.MapClaims{
		"origin": origin,
		"exp":    time.Now().Add(10 * time.Minute).Unix(),
		"iat":    time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// VerifyStateToken checks a state parameter and returns the origin URL
// it carries (may be empty).
func VerifyStateToken(state string) (string, error) {
	token, err := jwtauth.VerifyToken(TokenAuth, state)
	if err != nil {
		return "", err
	}
	origin, _ := token.Get("origin")
	s, _ := origin.(string)
	return s, nil
}

// Claim extraction helpers for bearer-token requests.

func GetUserIDFromClaims(claims map[string]interface{}) (int64, error) {
	// JSON numbers decode as float64.
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("user_id claim is missing or not a number")
	}
	return int64(id), nil
}

func GetPermissionsFromClaims(claims map[string]interface{}) (int, error) {
	mask, ok := claims["permissions"].(float64)
	if !ok {
		return 0, errors.New("permissions claim is missing or not a number")
	}
	return int(mask), nil
}

package session

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

// RoleFromToken reads the "role" claim from the token payload. Neither the
// header nor the signature is looked at, and expiry is not checked: the
// result only decides which controls to show and the backend enforces
// permissions. Any malformed token yields "".
func RoleFromToken(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ""
	}
	payload, err := jwt.NewParser(jwt.WithPaddingAllowed()).DecodeSegment(parts[1])
	if err != nil {
		return ""
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}
	role, ok := claims["role"].(string)
	if !ok {
		return ""
	}
	return role
}

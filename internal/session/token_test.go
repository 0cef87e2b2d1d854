package session

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".c2lnbmF0dXJl"
}

func TestRoleFromToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"admin", makeToken(`{"id":"u1","role":"admin"}`), "admin"},
		{"user", makeToken(`{"id":"u1","role":"user"}`), "user"},
		{"expired still decoded", makeToken(`{"role":"admin","exp":1}`), "admin"},
		{"no role claim", makeToken(`{"id":"u1"}`), ""},
		{"non string role", makeToken(`{"role":7}`), ""},
		{"empty", "", ""},
		{"two segments", "abc.def", ""},
		{"four segments", "a.b.c.d", ""},
		{"payload not base64", "aaa.!!!.ccc", ""},
		{"payload not json", "aaa." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".ccc", ""},
		{"payload is an array", "aaa." + base64.RawURLEncoding.EncodeToString([]byte(`["admin"]`)) + ".ccc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, RoleFromToken(tt.token))
			})
		})
	}
}

func TestRoleFromToken_PaddedPayload(t *testing.T) {
	header := base64.URLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))
	body := base64.URLEncoding.EncodeToString([]byte(`{"role":"admin"}`))

	assert.Equal(t, "admin", RoleFromToken(header+"."+body+".sig"))
}

func TestRoleFromToken_IgnoresHeader(t *testing.T) {
	body := base64.RawURLEncoding.EncodeToString([]byte(`{"role":"admin"}`))

	for _, header := range []string{"garbage", "", base64.RawURLEncoding.EncodeToString([]byte("not json"))} {
		assert.Equal(t, "admin", RoleFromToken(header+"."+body+".sig"), header)
	}
}

func TestRoleFromToken_UnknownAlgorithm(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"XX512"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(`{"role":"admin"}`))

	assert.Equal(t, "admin", RoleFromToken(header+"."+body+".sig"))
}

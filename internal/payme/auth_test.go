package payme

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestCheckAuth(t *testing.T) {
	const merchantID = "Paycom"
	const merchantKey = "secret-key"

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid credentials", basicHeader(merchantID, merchantKey), true},
		{"wrong key", basicHeader(merchantID, "wrong"), false},
		{"wrong id", basicHeader("other", merchantKey), false},
		{"empty header", "", false},
		{"bearer scheme", "Bearer abc123", false},
		{"not base64", "Basic not-base64!!!", false},
		{"no colon in payload", "Basic " + base64.StdEncoding.EncodeToString([]byte("nocolon")), false},
		{"empty credentials", basicHeader("", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckAuth(tt.header, merchantID, merchantKey))
		})
	}
}

func TestCheckAuthKeyIsNotPrefixMatched(t *testing.T) {
	assert.False(t, CheckAuth(basicHeader("Paycom", "secret"), "Paycom", "secret-key"))
	assert.False(t, CheckAuth(basicHeader("Paycom", "secret-key-extra"), "Paycom", "secret-key"))
}

package payme

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// CheckAuth validates the gateway's Basic credentials against the configured
// merchant id and key. Any malformation (missing header, wrong scheme, bad
// base64, no colon) fails closed. Comparison is constant-time.
func CheckAuth(header, merchantID, merchantKey string) bool {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return false
	}

	username, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(merchantID)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(merchantKey)) == 1
	return userOK && passOK
}

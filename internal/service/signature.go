package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// signaturePrefix is the scheme tag carried in X-Hub-Signature-256 headers.
const signaturePrefix = "sha256="

// SignPayload computes the hex HMAC-SHA256 of body under secret and returns
// it in header form, prefixed with "sha256=".
func SignPayload(secret string, body []byte) string {
	return signaturePrefix + computeHMAC(secret, body)
}

// VerifySignature checks a producer-supplied signature against body. The
// "sha256=" prefix is optional. Comparison is constant-time.
func VerifySignature(secret string, body []byte, provided string) bool {
	provided = strings.TrimPrefix(provided, signaturePrefix)
	expected := computeHMAC(secret, body)
	return hmac.Equal([]byte(expected), []byte(provided))
}

func computeHMAC(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader carries the webhook signature
const SignatureHeader = "X-Line-Signature"

// Sign returns the base64-encoded HMAC-SHA256 of body keyed by channelSecret
func Sign(body []byte, channelSecret string) string {
	return base64.StdEncoding.EncodeToString(mac(body, channelSecret))
}

// VerifySignature checks an X-Line-Signature value against body.
// Empty input or an undecodable signature fails verification.
func VerifySignature(body []byte, signature, channelSecret string) bool {
	if len(body) == 0 || signature == "" {
		return false
	}
	given, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(mac(body, channelSecret), given)
}

func mac(body []byte, channelSecret string) []byte {
	h := hmac.New(sha256.New, []byte(channelSecret))
	h.Write(body)
	return h.Sum(nil)
}

package dydx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// sign computes the request signature: HMAC-SHA256 over
// timestamp + method + requestPath + body, keyed with the url-safe
// base64-decoded API secret, encoded back to url-safe base64.
func sign(secret, timestamp, method, requestPath string, body []byte) string {
	key, err := base64.URLEncoding.DecodeString(secret)
	if err != nil {
		// Some key stores hand the secret out raw; sign with it as-is.
		key = []byte(secret)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(timestamp))
	mac.Write([]byte(method))
	mac.Write([]byte(requestPath))
	mac.Write(body)
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

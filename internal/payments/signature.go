package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ExpectedSignature returns the lowercase hex HMAC-SHA256 the gateway attaches to a
// successful checkout: HMAC(secret, orderID + "|" + paymentID).
func ExpectedSignature(secret []byte, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureMatches compares in constant time with respect to where the inputs differ.
func SignatureMatches(secret []byte, orderID, paymentID, signature string) bool {
	expected := ExpectedSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

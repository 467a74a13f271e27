package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"

	"github.com/pkg/errors"
)

// sign считает API-Sign:
// base64(HMAC-SHA512(path + SHA256(nonce + postData), base64decode(secret))).
func sign(path, nonce, postData, secret string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", errors.Wrap(err, "decode api secret")
	}

	sum := sha256.Sum256([]byte(nonce + postData))

	h := hmac.New(sha512.New, key)
	h.Write([]byte(path))
	h.Write(sum[:])
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

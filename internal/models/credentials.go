package models

import (
	"crypto/rand"
	"strings"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString generates a random alphanumeric string for account
// credentials and tags.
func RandomString(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; keep the
		// account creatable anyway.
		return strings.Repeat("x", length)
	}

	var sb strings.Builder
	for _, b := range buf {
		sb.WriteByte(alphanumeric[int(b)%len(alphanumeric)])
	}
	return sb.String()
}

// RandomTag generates an uppercase account tag
func RandomTag(length int) string {
	return strings.ToUpper(RandomString(length))
}

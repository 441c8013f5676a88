package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode returns a random six-digit numeric code, used for both email
// verification and password reset tokens.
func GenerateCode() string {
	// [100000, 999999]
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails when the platform source is broken.
		panic(fmt.Sprintf("auth: reading random source: %v", err))
	}
	return fmt.Sprintf("%d", n.Int64()+100000)
}

package utils

import (
	"math/rand"
	"os"

	"github.com/rostsocial/rost/utils/dotenv"
	"github.com/rostsocial/rost/utils/flag"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// RandomAlphabetString returns a lower case string of length n. Safe for
// concurrent use, not for anything secret.
func RandomAlphabetString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// IsProdEnv is true when either the env or the -dev=false flag says so.
func IsProdEnv() bool {
	return os.Getenv("ROST_ENV") == dotenv.ProdEnv || !*flag.IsDevelopment
}

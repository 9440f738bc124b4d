// Command genkey generates a random signing key for geleit.
//
// The key is printed as unpadded base64url, the encoding the config
// expects for auth.password_key, auth.token_key and auth.service_key:
//
//	GELEIT_PWD_KEY=$(genkey) GELEIT_TOKEN_KEY=$(genkey) server
package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	size := flag.Int("bytes", 64, "number of random key bytes")
	flag.Parse()

	if err := run(os.Stdout, rand.Reader, *size); err != nil {
		fmt.Fprintln(os.Stderr, "genkey:", err)
		os.Exit(1)
	}
}

// run generates size random bytes from reader and writes them to out
// as unpadded base64url. Sizes under 32 bytes are refused, matching
// the config validation.
func run(out io.Writer, reader io.Reader, size int) error {
	if size < 32 {
		return errors.New("keys under 32 bytes are too weak")
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("reading randomness: %w", err)
	}

	_, err := fmt.Fprintln(out, base64.RawURLEncoding.EncodeToString(buf))
	return err
}

// Command demo walks through the geleit credential lifecycle without a
// server: hashing, validation, scheme migration and session tokens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/geleit/geleit/pkg/api"
	"github.com/geleit/geleit/pkg/password"
	"github.com/geleit/geleit/pkg/token"
)

func main() {
	fmt.Println("=== geleit credential lifecycle demo ===")
	fmt.Println()

	ctx := context.Background()
	pwdKey := []byte("demo-password-key-not-for-production")
	tokenKey := []byte("demo-token-key-not-for-production")

	// 1. Hash a credential under the default scheme.
	hasher := password.NewHasher(pwdKey, nil)
	salt := uuid.New()
	const clear = "correct horse battery staple"

	stored, err := hasher.Hash(ctx, password.ContentToHash{Content: clear, Salt: salt})
	if err != nil {
		fmt.Printf("Hash FAILED: %v\n", err)
		return
	}
	fmt.Printf("[1] Stored hash: %s\n", stored)

	// 2. Validate the right and a wrong password.
	status, err := hasher.Validate(ctx, password.ContentToHash{Content: clear, Salt: salt}, stored)
	fmt.Printf("\n[2] Correct password: status=%v err=%v\n", status, err)
	_, err = hasher.Validate(ctx, password.ContentToHash{Content: "guess", Salt: salt}, stored)
	fmt.Printf("    Wrong password:   err=%v\n", err)

	// 3. A legacy scheme-01 hash still validates but reports outdated,
	// which is the signal to recompute it under the default scheme.
	legacy := "#01#" + password.SignBase64URL(pwdKey, clear, salt[:])
	status, err = hasher.Validate(ctx, password.ContentToHash{Content: clear, Salt: salt}, legacy)
	fmt.Printf("\n[3] Legacy hash:      status=%v err=%v\n", status, err)

	// 4. Issue and validate a session token.
	signer := token.NewSigner(tokenKey, 30*time.Minute)
	tokenSalt := uuid.New()
	tok := signer.Generate("alice", tokenSalt)
	fmt.Printf("\n[4] Session token: %s\n", tok.String())
	fmt.Printf("    Validates: err=%v\n", signer.Validate(tok, tokenSalt))

	// 5. Tampering with the identifier breaks the signature.
	forged := tok
	forged.Ident = "bob"
	fmt.Printf("\n[5] Forged ident:  err=%v\n", signer.Validate(forged, tokenSalt))

	// 6. The wire shape a successful login answers with.
	resp := api.LoginResponse{UserID: 1, Username: "alice", ExpiresAt: tok.Exp}
	data, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Printf("\n[6] Login response JSON:\n%s\n", data)
}

// Command opscred generates an ops bootstrap credential and the bcrypt
// hash the server expects in LEADGATE_OPS_CREDENTIAL_HASH. The plaintext
// credential is printed once; only the hash is stored.
package main

import (
	"fmt"
	"os"

	"leadgate/pkg/secrets"
)

func main() {
	credential, err := secrets.Generate()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate credential:", err)
		os.Exit(1)
	}
	hash, err := secrets.Hash(credential)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash credential:", err)
		os.Exit(1)
	}

	fmt.Println("ops credential (store securely, shown once):")
	fmt.Println(" ", credential)
	fmt.Println()
	fmt.Printf("LEADGATE_OPS_CREDENTIAL_HASH=%s\n", hash)
}

// Command keygen creates the Ed25519 key pair the SFTP attachment store
// authenticates with. Install the .pub line in the storage host's
// authorized_keys and point storage.sftp.private_key at the private key.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/taskboard/backend/pkg/utils/sshkeygen"
)

func main() {
	out := pflag.StringP("out", "o", "", "private key path (default ~/.ssh/taskboard_sftp_ed25519)")
	comment := pflag.String("comment", "taskboard-attachments", "comment appended to the public key")
	pflag.Parse()

	privateKeyPath, publicKeyPath, err := sshkeygen.DefaultPaths()
	if err != nil {
		log.Fatalf("Failed to resolve key paths: %v", err)
	}
	if *out != "" {
		privateKeyPath, publicKeyPath = *out, *out+".pub"
	}

	fmt.Printf("Private key: %s\n", privateKeyPath)
	fmt.Printf("Public key: %s\n", publicKeyPath)

	created, err := sshkeygen.GenerateEd25519KeyPair(privateKeyPath, publicKeyPath, *comment)
	if err != nil {
		log.Fatalf("Failed to generate key pair: %v", err)
	}
	if created {
		fmt.Printf("✓ Key pair generated successfully\n")
	} else {
		fmt.Printf("✓ Key pair already exists (skipped)\n")
	}
}

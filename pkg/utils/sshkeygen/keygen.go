package sshkeygen

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// GenerateEd25519KeyPair writes an OpenSSH private key and its authorized_keys
// line. An existing private key is left untouched and created is false.
func GenerateEd25519KeyPair(privateKeyPath, publicKeyPath, comment string) (created bool, err error) {
	if _, err := os.Stat(privateKeyPath); err == nil {
		return false, nil
	}

	keyDir := filepath.Dir(privateKeyPath)
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return false, fmt.Errorf("failed to create key directory: %w", err)
	}

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return false, fmt.Errorf("failed to generate key pair: %w", err)
	}

	privKeyPEM, err := ssh.MarshalPrivateKey(privKey, comment)
	if err != nil {
		return false, fmt.Errorf("failed to marshal private key: %w", err)
	}
	if err := os.WriteFile(privateKeyPath, pem.EncodeToMemory(privKeyPEM), 0600); err != nil {
		return false, fmt.Errorf("failed to write private key: %w", err)
	}

	sshPubKey, err := ssh.NewPublicKey(pubKey)
	if err != nil {
		return false, fmt.Errorf("failed to create public key: %w", err)
	}
	line := ssh.MarshalAuthorizedKey(sshPubKey)
	if comment != "" {
		line = append(line[:len(line)-1], []byte(" "+comment+"\n")...)
	}
	if err := os.WriteFile(publicKeyPath, line, 0644); err != nil {
		return false, fmt.Errorf("failed to write public key: %w", err)
	}

	return true, nil
}

// DefaultPaths is where the attachment store key lives unless told otherwise.
func DefaultPaths() (string, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("failed to get home directory: %w", err)
	}
	priv := filepath.Join(homeDir, ".ssh", "taskboard_sftp_ed25519")
	return priv, priv + ".pub", nil
}

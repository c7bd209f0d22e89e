package sshkeygen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestGenerateEd25519KeyPair(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "keys", "id")
	pub := priv + ".pub"

	created, err := GenerateEd25519KeyPair(priv, pub, "taskboard")
	if err != nil || !created {
		t.Fatalf("GenerateEd25519KeyPair = %v, %v; want true, nil", created, err)
	}

	privBytes, err := os.ReadFile(priv)
	if err != nil {
		t.Fatalf("read private key: %v", err)
	}
	signer, err := ssh.ParsePrivateKey(privBytes)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}

	pubBytes, _ := os.ReadFile(pub)
	parsed, comment, _, _, err := ssh.ParseAuthorizedKey(pubBytes)
	if err != nil {
		t.Fatalf("ParseAuthorizedKey: %v", err)
	}
	if comment != "taskboard" {
		t.Fatalf("comment = %q, want taskboard", comment)
	}
	if string(parsed.Marshal()) != string(signer.PublicKey().Marshal()) {
		t.Fatal("public key does not match private key")
	}
	if !strings.HasPrefix(string(pubBytes), "ssh-ed25519 ") {
		t.Fatalf("public key = %q", pubBytes)
	}

	created, err = GenerateEd25519KeyPair(priv, pub, "taskboard")
	if err != nil || created {
		t.Fatalf("second call = %v, %v; want false, nil", created, err)
	}
	again, _ := os.ReadFile(priv)
	if string(again) != string(privBytes) {
		t.Fatal("existing private key was overwritten")
	}
}

package indexer

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientWithoutCredentialsIsDisabled(t *testing.T) {
	c, err := NewClient("")
	require.NoError(t, err)
	require.False(t, c.Enabled())

	require.NoError(t, c.NotifyURL(context.Background(), "https://matchfly.org/voo/x.html", NotifyUpdated))

	ok, failed := c.NotifyBatch(context.Background(),
		[]string{"https://matchfly.org/voo/a.html", "https://matchfly.org/voo/b.html"}, NotifyUpdated)
	require.Zero(t, ok)
	require.Zero(t, failed)
}

func TestNewClientMissingFile(t *testing.T) {
	_, err := NewClient(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestNewClientRejectsIncompleteCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_email": "svc@example.iam"}`), 0o600))

	_, err := NewClient(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "private_key")
}

func TestNewClientRejectsBadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	creds := map[string]string{
		"client_email": "svc@example.iam",
		"private_key":  "not a pem block",
	}
	data, err := json.Marshal(creds)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = NewClient(path)
	require.Error(t, err)
}

func TestNewClientParsesValidCredentials(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	path := filepath.Join(t.TempDir(), "creds.json")
	creds := map[string]string{
		"client_email": "svc@example.iam",
		"private_key":  string(keyPEM),
	}
	data, err := json.Marshal(creds)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	c, err := NewClient(path)
	require.NoError(t, err)
	require.True(t, c.Enabled())
	require.Equal(t, defaultTokenURI, c.account.TokenURI)
}

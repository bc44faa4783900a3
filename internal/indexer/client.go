package indexer

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonechelon/matchfly-pseo/internal/logging"
)

const (
	indexingEndpoint = "https://indexing.googleapis.com/v3/urlNotifications:publish"
	indexingScope    = "https://www.googleapis.com/auth/indexing"
	defaultTokenURI  = "https://oauth2.googleapis.com/token"

	// Notification types accepted by the API.
	NotifyUpdated = "URL_UPDATED"
	NotifyDeleted = "URL_DELETED"

	maxBatchSize = 100
)

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// Client submits rendered page URLs to the search indexing API. A client
// built without credentials is a no-op: indexing is best effort and must
// never gate artifact generation.
type Client struct {
	account    *serviceAccount
	signingKey *rsa.PrivateKey
	httpClient *http.Client

	accessToken string
	tokenExpiry time.Time
}

// NewClient loads service-account credentials from the given file. An empty
// path yields a disabled client and no error.
func NewClient(credentialsFile string) (*Client, error) {
	if credentialsFile == "" {
		return &Client{httpClient: &http.Client{Timeout: 30 * time.Second}}, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexing credentials: %w", err)
	}

	var account serviceAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("invalid indexing credentials file: %w", err)
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return nil, fmt.Errorf("indexing credentials missing client_email or private_key")
	}
	if account.TokenURI == "" {
		account.TokenURI = defaultTokenURI
	}

	key, err := parseRSAKey(account.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid service account key: %w", err)
	}

	return &Client{
		account:    &account,
		signingKey: key,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Enabled reports whether the client has credentials to work with.
func (c *Client) Enabled() bool {
	return c.account != nil
}

func parseRSAKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA key")
	}
	return key, nil
}

// authenticate exchanges a signed assertion for a bearer token.
func (c *Client) authenticate(ctx context.Context) error {
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return nil
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   c.account.ClientEmail,
		"scope": indexingScope,
		"aud":   c.account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.signingKey)
	if err != nil {
		return fmt.Errorf("failed to sign token assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.account.TokenURI,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token exchange returned status %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("unparseable token response: %w", err)
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return nil
}

// NotifyURL submits one URL notification.
func (c *Client) NotifyURL(ctx context.Context, pageURL, notificationType string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.authenticate(ctx); err != nil {
		return err
	}

	body, _ := json.Marshal(map[string]string{
		"url":  pageURL,
		"type": notificationType,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, indexingEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("indexing API returned status %d for %s", resp.StatusCode, pageURL)
	}
	return nil
}

// NotifyBatch submits URLs in bounded batches, counting failures instead of
// stopping on them. Returns submitted and failed counts.
func (c *Client) NotifyBatch(ctx context.Context, urls []string, notificationType string) (int, int) {
	if !c.Enabled() {
		logging.Info("indexing disabled, skipping submission", "urls", len(urls))
		return 0, 0
	}

	var ok, failed int
	for start := 0; start < len(urls); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(urls) {
			end = len(urls)
		}
		for _, u := range urls[start:end] {
			if err := c.NotifyURL(ctx, u, notificationType); err != nil {
				logging.Warn("indexing submission failed", "url", u, "error", err.Error())
				failed++
				continue
			}
			ok++
		}
	}

	logging.Info("indexing submission finished", "submitted", ok, "failed", failed)
	return ok, failed
}

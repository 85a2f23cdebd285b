package models

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Credential is a provider token pair persisted by the CLI for one account.
type Credential struct {
	id           string
	userID       string
	displayName  string
	accessToken  string
	refreshToken string
	tokenType    string
	expiry       time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewCredential creates a [Credential] for userID from an OAuth token.
func NewCredential(userID, displayName string, tok *oauth2.Token) *Credential {
	now := time.Now().UTC()
	c := &Credential{userID: userID, displayName: displayName, createdAt: now, updatedAt: now}
	c.SetToken(tok)
	return c
}

func (c *Credential) ID() string           { return c.id }
func (c *Credential) UserID() string       { return c.userID }
func (c *Credential) DisplayName() string  { return c.displayName }
func (c *Credential) AccessToken() string  { return c.accessToken }
func (c *Credential) RefreshToken() string { return c.refreshToken }
func (c *Credential) TokenType() string    { return c.tokenType }
func (c *Credential) Expiry() time.Time    { return c.expiry }
func (c *Credential) CreatedAt() time.Time { return c.createdAt }
func (c *Credential) UpdatedAt() time.Time { return c.updatedAt }

func (c *Credential) SetID(id string)            { c.id = id }
func (c *Credential) SetCreatedAt(t time.Time)   { c.createdAt = t }
func (c *Credential) SetUpdatedAt(t time.Time)   { c.updatedAt = t }
func (c *Credential) SetDisplayName(name string) { c.displayName = name }

// SetToken replaces the stored token. An empty refresh token keeps the previous one,
// since the provider may omit it on refresh.
func (c *Credential) SetToken(tok *oauth2.Token) {
	if tok == nil {
		return
	}
	c.accessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		c.refreshToken = tok.RefreshToken
	}
	c.tokenType = tok.TokenType
	if c.tokenType == "" {
		c.tokenType = "Bearer"
	}
	c.expiry = tok.Expiry.UTC()
	c.updatedAt = time.Now().UTC()
}

// Token returns the stored credential as an [oauth2.Token].
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.accessToken,
		RefreshToken: c.refreshToken,
		TokenType:    c.tokenType,
		Expiry:       c.expiry,
	}
}

// Expired reports whether the access token expires within leeway of now.
func (c *Credential) Expired(leeway time.Duration) bool {
	if c.expiry.IsZero() {
		return false
	}
	return time.Now().Add(leeway).After(c.expiry)
}

// Validate checks required fields.
func (c *Credential) Validate() error {
	if c.id == "" {
		return fmt.Errorf("credential id is required")
	}
	if c.userID == "" {
		return fmt.Errorf("credential user id is required")
	}
	if c.accessToken == "" {
		return fmt.Errorf("credential access token is required")
	}
	return nil
}

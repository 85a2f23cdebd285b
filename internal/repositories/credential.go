package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

const credentialColumns = `id, user_id, display_name, access_token, refresh_token, token_type, expiry, created_at, updated_at`

// CredentialRepository implements [models.Repository] for [models.Credential].
type CredentialRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Credential] = (*CredentialRepository)(nil)

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create inserts a new credential with a generated ID.
//
// A second credential for the same provider user fails; use [CredentialRepository.Save] to upsert.
func (r *CredentialRepository) Create(c *models.Credential) error {
	c.SetID(shared.GenerateID())
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO credentials (` + credentialColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		c.ID(), c.UserID(), c.DisplayName(), c.AccessToken(), c.RefreshToken(), c.TokenType(),
		nullTime(c.Expiry()), c.CreatedAt().UTC(), c.UpdatedAt().UTC(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: credential for user %s already exists", shared.ErrInvalidInput, c.UserID())
	}
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

// Get retrieves a credential by ID.
func (r *CredentialRepository) Get(id string) (*models.Credential, error) {
	row := r.db.QueryRow(`SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)
	return scanCredential(row, id)
}

// GetByUserID retrieves the credential stored for a provider user.
func (r *CredentialRepository) GetByUserID(userID string) (*models.Credential, error) {
	row := r.db.QueryRow(`SELECT `+credentialColumns+` FROM credentials WHERE user_id = ?`, userID)
	return scanCredential(row, userID)
}

// Latest returns the most recently updated credential, the account the CLI acts as.
func (r *CredentialRepository) Latest() (*models.Credential, error) {
	row := r.db.QueryRow(`SELECT ` + credentialColumns + ` FROM credentials ORDER BY updated_at DESC LIMIT 1`)
	return scanCredential(row, "latest")
}

// Update rewrites the token fields of an existing credential.
func (r *CredentialRepository) Update(c *models.Credential) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	c.SetUpdatedAt(now)

	query := `
		UPDATE credentials
		SET display_name = ?, access_token = ?, refresh_token = ?, token_type = ?, expiry = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.Exec(query,
		c.DisplayName(), c.AccessToken(), c.RefreshToken(), c.TokenType(), nullTime(c.Expiry()), now, c.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	return affectedOne(res, fmt.Errorf("%w: %s", shared.ErrCredentialNotFound, c.ID()))
}

// Save creates c, or updates the stored credential of the same provider user in place.
func (r *CredentialRepository) Save(c *models.Credential) error {
	existing, err := r.GetByUserID(c.UserID())
	switch {
	case errors.Is(err, shared.ErrCredentialNotFound):
		return r.Create(c)
	case err != nil:
		return err
	}

	c.SetID(existing.ID())
	c.SetCreatedAt(existing.CreatedAt())
	if c.RefreshToken() == "" {
		c.SetToken(&oauth2.Token{
			AccessToken:  c.AccessToken(),
			RefreshToken: existing.RefreshToken(),
			TokenType:    c.TokenType(),
			Expiry:       c.Expiry(),
		})
	}
	return r.Update(c)
}

// Delete removes a credential by ID.
func (r *CredentialRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM credentials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return affectedOne(res, fmt.Errorf("%w: %s", shared.ErrCredentialNotFound, id))
}

// List retrieves credentials, newest first. Supported criteria: "user_id".
func (r *CredentialRepository) List(criteria map[string]any) ([]*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE 1 = 1`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		c, err := scanCredential(rows, "")
		if err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return creds, nil
}

func scanCredential(row rowScanner, key string) (*models.Credential, error) {
	var (
		id, userID, displayName          string
		accessToken, refreshToken, ttype string
		expiry                           sql.NullTime
		createdAt, updatedAt             time.Time
	)

	err := row.Scan(&id, &userID, &displayName, &accessToken, &refreshToken, &ttype, &expiry, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCredentialNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan credential: %w", err)
	}

	tok := &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken, TokenType: ttype}
	if expiry.Valid {
		tok.Expiry = expiry.Time
	}

	c := models.NewCredential(userID, displayName, tok)
	c.SetID(id)
	c.SetCreatedAt(createdAt)
	c.SetUpdatedAt(updatedAt)
	return c, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"unalone/internal/domain"
)

// Setting keys in the local database.
const (
	keyAuthToken   = "authToken"
	keyConsent     = "cookieConsent"
	keyAnonymousID = "tempUserId"
)

// StateRepository persists client-side state in a local sqlite database:
// the auth token, consent preferences, and the anonymous user identifier.
type StateRepository struct {
	DB *sql.DB
}

// New wraps an existing database handle. The schema must already exist.
func New(db *sql.DB) *StateRepository {
	return &StateRepository{DB: db}
}

// Open opens (or creates) the local database at path and bootstraps the
// schema.
func Open(path string) (*StateRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}
	return New(db), nil
}

// Close closes the underlying database.
func (r *StateRepository) Close() error {
	return r.DB.Close()
}

func (r *StateRepository) set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, key, value, time.Now().UTC())
	return err
}

func (r *StateRepository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *StateRepository) SaveToken(ctx context.Context, token string) error {
	if err := r.set(ctx, keyAuthToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *StateRepository) Token(ctx context.Context) (string, error) {
	token, err := r.get(ctx, keyAuthToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

func (r *StateRepository) ClearToken(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, keyAuthToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (r *StateRepository) SaveConsent(ctx context.Context, prefs domain.ConsentPreferences) error {
	raw, err := json.Marshal(prefs.Normalized())
	if err != nil {
		return fmt.Errorf("encode consent: %w", err)
	}
	if err := r.set(ctx, keyConsent, string(raw)); err != nil {
		return fmt.Errorf("save consent: %w", err)
	}
	return nil
}

func (r *StateRepository) Consent(ctx context.Context) (domain.ConsentPreferences, error) {
	raw, err := r.get(ctx, keyConsent)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ConsentPreferences{}, domain.ErrNotFound
		}
		return domain.ConsentPreferences{}, fmt.Errorf("get consent: %w", err)
	}
	var prefs domain.ConsentPreferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return domain.ConsentPreferences{}, fmt.Errorf("decode consent: %w", err)
	}
	return prefs.Normalized(), nil
}

// AnonymousID returns the stored anonymous identifier, generating and
// persisting one on first use.
func (r *StateRepository) AnonymousID(ctx context.Context) (string, error) {
	id, err := r.get(ctx, keyAnonymousID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("get anonymous id: %w", err)
	}
	id = "temp_" + uuid.NewString()
	if err := r.set(ctx, keyAnonymousID, id); err != nil {
		return "", fmt.Errorf("save anonymous id: %w", err)
	}
	return id, nil
}

package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrPreferenceNotFound is returned when a preference key has no value.
var ErrPreferenceNotFound = errors.New("preference not found")

// GetPreference returns the stored value for a preference key.
func (db *DB) GetPreference(key string) (string, error) {
	var value string
	err := db.conn.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrPreferenceNotFound
		}
		return "", fmt.Errorf("failed to get preference %q: %w", key, err)
	}
	return value, nil
}

// SetPreference stores a preference value, replacing any previous one.
func (db *DB) SetPreference(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %q: %w", key, err)
	}
	return nil
}

// ListPreferences returns all stored preferences.
func (db *DB) ListPreferences() (map[string]string, error) {
	rows, err := db.conn.Query("SELECT key, value FROM preferences")
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}

package database

import (
	"database/sql"
	"fmt"

	"cfdnsbot/internal/model"
)

// SaveAccount upserts by owning user id. A re-submission overwrites the
// previous credentials but keeps the original created_at. The API key is
// encrypted before it reaches the row.
func (db *DB) SaveAccount(a model.CloudflareAccount) error {
	encKey, err := db.cipher.Encrypt(a.APIKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt api key: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT INTO cf_accounts (user_id, email, api_key, account_id, zone_id, zone_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT(user_id) DO UPDATE SET
		   email = $2, api_key = $3, account_id = $4, zone_id = $5, zone_name = $6,
		   updated_at = NOW()`,
		a.UserID, a.Email, encKey, a.AccountID, a.ZoneID, a.ZoneName,
	)
	return err
}

// GetAccount returns the account for a user with the API key decrypted,
// or nil when the user has none.
func (db *DB) GetAccount(userID int64) (*model.CloudflareAccount, error) {
	a := &model.CloudflareAccount{}
	err := db.conn.QueryRow(
		`SELECT user_id, email, api_key, account_id, zone_id, zone_name, created_at, updated_at
		 FROM cf_accounts WHERE user_id = $1`,
		userID,
	).Scan(&a.UserID, &a.Email, &a.APIKey, &a.AccountID, &a.ZoneID, &a.ZoneName, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	key, err := db.cipher.Decrypt(a.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt api key: %w", err)
	}
	a.APIKey = key
	return a, nil
}

func (db *DB) AccountExists(userID int64) (bool, error) {
	var one int
	err := db.conn.QueryRow("SELECT 1 FROM cf_accounts WHERE user_id = $1 LIMIT 1", userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (db *DB) DeleteAccount(userID int64) (bool, error) {
	res, err := db.conn.Exec("DELETE FROM cf_accounts WHERE user_id = $1", userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateAccountZone switches the managed zone without re-entering
// credentials.
func (db *DB) UpdateAccountZone(userID int64, zoneID, zoneName string) error {
	_, err := db.conn.Exec(
		"UPDATE cf_accounts SET zone_id = $1, zone_name = $2, updated_at = NOW() WHERE user_id = $3",
		zoneID, zoneName, userID,
	)
	return err
}

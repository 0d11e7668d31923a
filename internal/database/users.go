package database

import (
	"database/sql"

	"cfdnsbot/internal/model"
)

// SaveUser upserts by chat id, refreshing the mutable display fields on
// conflict. The original created_at is kept.
func (db *DB) SaveUser(u model.User) error {
	_, err := db.conn.Exec(
		`INSERT INTO users (chat_id, username, first_name, last_name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT(chat_id) DO UPDATE SET
		   username = $2, first_name = $3, last_name = $4, updated_at = NOW()`,
		u.ChatID, u.Username, u.FirstName, u.LastName,
	)
	return err
}

func (db *DB) GetUser(chatID int64) (*model.User, error) {
	u := &model.User{}
	var username, firstName, lastName sql.NullString
	err := db.conn.QueryRow(
		"SELECT chat_id, username, first_name, last_name, created_at, updated_at FROM users WHERE chat_id = $1",
		chatID,
	).Scan(&u.ChatID, &username, &firstName, &lastName, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Username = username.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	return u, nil
}

func (db *DB) UserExists(chatID int64) (bool, error) {
	var one int
	err := db.conn.QueryRow("SELECT 1 FROM users WHERE chat_id = $1 LIMIT 1", chatID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// DeleteUser removes the user row; the cf_accounts row, if any, goes with
// it via the foreign key cascade. Returns false when no row matched.
func (db *DB) DeleteUser(chatID int64) (bool, error) {
	res, err := db.conn.Exec("DELETE FROM users WHERE chat_id = $1", chatID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

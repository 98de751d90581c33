package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/lab-portal/backend/internal/models"
)

// SQLiteStore implements UserStore on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates (if needed) and opens the user database at dbPath.
// Use ":memory:" for an ephemeral store in tests.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening user database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging user database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		email          TEXT NOT NULL UNIQUE,
		ip             TEXT NOT NULL DEFAULT '',
		server_code    TEXT NOT NULL DEFAULT '',
		zerotier_id    TEXT NOT NULL DEFAULT '',
		ssh_folder     TEXT NOT NULL DEFAULT '',
		resilio        TEXT NOT NULL DEFAULT '',
		type           TEXT NOT NULL DEFAULT 'member',
		user_group     TEXT NOT NULL DEFAULT '',
		lab            TEXT NOT NULL DEFAULT '',
		server_storage INTEGER NOT NULL DEFAULT 0,
		password_hash  BLOB
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_server_code ON users(server_code);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, ip, server_code, zerotier_id, ssh_folder, resilio, type, user_group, lab, server_storage`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.IP, &u.ServerCode, &u.ZerotierID,
		&u.SSHFolder, &u.Resilio, &u.Type, &u.Group, &u.Lab, &u.ServerStorage)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns every user ordered by name, matching the admin views'
// full-collection scan.
func (s *SQLiteStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return u, nil
}

func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) Create(ctx context.Context, user *models.User) error {
	if user.Type == "" {
		user.Type = models.UserTypeMember
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.IP, user.ServerCode, user.ZerotierID,
		user.SSHFolder, user.Resilio, user.Type, user.Group, user.Lab, user.ServerStorage)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) setField(ctx context.Context, id, column string, value interface{}) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET `+column+` = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("updating %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetZerotierID(ctx context.Context, id, zerotierID string) error {
	return s.setField(ctx, id, "zerotier_id", zerotierID)
}

func (s *SQLiteStore) ClearZerotierID(ctx context.Context, id string) error {
	return s.setField(ctx, id, "zerotier_id", "")
}

func (s *SQLiteStore) GrantAccess(ctx context.Context, id, ip, serverCode, sshFolder string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET ip = ?, server_code = ?, ssh_folder = ? WHERE id = ?`,
		ip, serverCode, sshFolder, id)
	if err != nil {
		return fmt.Errorf("granting access: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeAccess clears the credential fields the way the dashboard's
// revoke action deletes them: ip and serverCode go, everything else
// (ssh_folder, zerotier id) stays.
func (s *SQLiteStore) RevokeAccess(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET ip = '', server_code = '' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("revoking access: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetResilio(ctx context.Context, id, link string) error {
	return s.setField(ctx, id, "resilio", link)
}

func (s *SQLiteStore) ClearResilio(ctx context.Context, id string) error {
	return s.setField(ctx, id, "resilio", "")
}

func (s *SQLiteStore) SetServerStorage(ctx context.Context, id string, megabytes int64) error {
	return s.setField(ctx, id, "server_storage", megabytes)
}

// AccessCodes builds the exported access-code table from users holding
// both a code and an address.
func (s *SQLiteStore) AccessCodes(ctx context.Context) (models.AccessTable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT server_code, name, ip, ssh_folder
		FROM users
		WHERE server_code != '' AND ip != ''`)
	if err != nil {
		return nil, fmt.Errorf("exporting access codes: %w", err)
	}
	defer rows.Close()

	table := make(models.AccessTable)
	for rows.Next() {
		var code string
		var record models.AccessRecord
		if err := rows.Scan(&code, &record.Name, &record.IP, &record.SSHFolder); err != nil {
			return nil, fmt.Errorf("scanning access code: %w", err)
		}
		table[code] = record
	}
	return table, rows.Err()
}

func (s *SQLiteStore) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	return s.setField(ctx, id, "password_hash", hash)
}

func (s *SQLiteStore) PasswordHash(ctx context.Context, email string) ([]byte, error) {
	var hash []byte
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading password hash: %w", err)
	}
	return hash, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

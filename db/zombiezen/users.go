package zombiezen

import (
	"context"
	"fmt"

	"github.com/quillhq/quill/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const userColumns = `id, name, email, password, role, verified, verification_code, recovery_code, profile_pic, created, updated`

// newUserFromStmt creates a User struct from a SQLite statement
func newUserFromStmt(stmt *sqlite.Stmt) (*db.User, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.User{
		ID:               stmt.GetText("id"),
		Name:             stmt.GetText("name"),
		Email:            stmt.GetText("email"),
		Password:         stmt.GetText("password"),
		Role:             stmt.GetText("role"),
		Verified:         stmt.GetInt64("verified") != 0,
		VerificationCode: stmt.GetText("verification_code"),
		RecoveryCode:     stmt.GetText("recovery_code"),
		ProfilePic:       stmt.GetText("profile_pic"),
		Created:          created,
		Updated:          updated,
	}, nil
}

// GetUserByEmail retrieves a user by email address.
// A nil user with nil error indicates no matching record was found.
func (d *Db) GetUserByEmail(email string) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{email},
		})

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (d *Db) GetUserById(id string) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{id},
		})

	if err != nil {
		return nil, err
	}

	return user, nil
}

// CreateUserWithPassword inserts a new user. On email conflict the existing
// row is returned untouched; the caller compares the returned password hash
// against the submitted one to detect the conflict.
func (d *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	role := user.Role
	if role == "" {
		role = db.DefaultRole
	}

	var createdUser db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (name, email, password, role, verified)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			updated = users.updated
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tempUser, err := newUserFromStmt(stmt)
				if err == nil && tempUser != nil {
					createdUser = *tempUser
				}
				return err
			},
			Args: []interface{}{
				user.Name,
				user.Email,
				user.Password,
				role,
				user.Verified,
			},
		})
	if err != nil {
		return nil, fmt.Errorf("user insert failed: %w", err)
	}

	return &createdUser, nil
}

func (d *Db) SetVerificationCode(userID, code string) error {
	return d.updateUserField(userID, `verification_code = ?`, code)
}

func (d *Db) SetRecoveryCode(userID, code string) error {
	return d.updateUserField(userID, `recovery_code = ?`, code)
}

// ConfirmVerification flips the verified flag and clears the code in a single
// guarded UPDATE: the code column doubles as the compare-and-swap guard, so a
// consumed code can never be replayed.
func (d *Db) ConfirmVerification(userID, code string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET verified = 1,
			verification_code = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ? AND verification_code != '' AND verification_code = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{userID, code},
		})
	if err != nil {
		return fmt.Errorf("failed to confirm verification: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrCodeMismatch
	}
	return nil
}

// RecoverPassword sets the new hash and clears the recovery code, guarded the
// same way as ConfirmVerification.
func (d *Db) RecoverPassword(userID, code, hashedPassword string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET password = ?,
			recovery_code = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ? AND recovery_code != '' AND recovery_code = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{hashedPassword, userID, code},
		})
	if err != nil {
		return fmt.Errorf("failed to recover password: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrCodeMismatch
	}
	return nil
}

func (d *Db) UpdatePassword(userID, hashedPassword string) error {
	return d.updateUserField(userID, `password = ?`, hashedPassword)
}

// UpdateProfile persists name, email, profile picture and the verified flag.
func (d *Db) UpdateProfile(user db.User) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET name = ?,
			email = ?,
			profile_pic = ?,
			verified = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{user.Name, user.Email, user.ProfilePic, user.Verified, user.ID},
		})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (d *Db) updateUserField(userID, assignment string, value interface{}) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET `+assignment+`,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{value, userID},
		})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrNotFound
	}
	return nil
}

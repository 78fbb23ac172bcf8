package repositories

import (
	"context"
	"database/sql"

	intdb "transporte/internal/db"
	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

type UserRepo struct {
	DB *sql.DB
}

const userColumns = `id, username, full_name, phone, email, role, active, password_hash`

func scanUser(s rowScanner) (models.User, error) {
	var u models.User
	err := s.Scan(&u.ID, &u.Username, &u.FullName, &u.Phone, &u.Email, &u.Role, &u.Active, &u.PasswordHash)
	return u, err
}

func (r UserRepo) GetByID(ctx context.Context, id domain.ID) (models.User, error) {
	u, err := scanUser(pool(r.DB).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	if err != nil {
		return models.User{}, notFound(err, "user")
	}
	return u, nil
}

func (r UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(pool(r.DB).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ? LIMIT 1`, username))
	if err != nil {
		return models.User{}, notFound(err, "user")
	}
	return u, nil
}

func (r UserRepo) ListByRole(ctx context.Context, role domain.Role, activeOnly bool) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY id`

	rows, err := pool(r.DB).QueryContext(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r UserRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	res, err := pool(r.DB).ExecContext(ctx, `
		INSERT INTO users (username, full_name, phone, email, role, active, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.Username, u.FullName, u.Phone, u.Email, u.Role, u.Active, u.PasswordHash)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return u, domain.ConflictError{Resource: "user", Msg: "username already registered", Err: err}
		}
		return u, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return u, err
	}
	u.ID = domain.ID(id)
	return u, nil
}

// Update keeps the stored password when PasswordHash is empty.
func (r UserRepo) Update(ctx context.Context, u models.User) (models.User, error) {
	res, err := pool(r.DB).ExecContext(ctx, `
		UPDATE users
		SET full_name = ?, phone = ?, email = ?, active = ?,
		    password_hash = COALESCE(?, password_hash)
		WHERE id = ?
	`, u.FullName, u.Phone, u.Email, u.Active, intdb.NullIfEmpty(u.PasswordHash), u.ID)
	if err != nil {
		return u, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return u, err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return u, err
		}
	}
	return u, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := `INSERT INTO users (uid, email, password_hash)
	         VALUES ($1, $2, $3)
	         RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt, create.UID, create.Email, create.PasswordHash).
		Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = "+placeholder(len(args)+1)), append(args, *v)
	}
	query := fmt.Sprintf(
		`SELECT id, uid, email, password_hash, created_ts FROM users WHERE %s ORDER BY id ASC`,
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.User
	for rows.Next() {
		u := &store.User{}
		if err := rows.Scan(&u.ID, &u.UID, &u.Email, &u.PasswordHash, &u.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

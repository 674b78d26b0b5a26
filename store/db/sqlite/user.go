package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	result, err := d.db.ExecContext(ctx,
		"INSERT INTO users (uid, email, password_hash) VALUES (?, ?, ?)",
		create.UID, create.Email, create.PasswordHash)
	if err != nil {
		return nil, err
	}
	rawID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	create.ID = int32(rawID)
	_ = d.db.QueryRowContext(ctx, "SELECT created_ts FROM users WHERE id = ?", create.ID).Scan(&create.CreatedTs)
	return create, nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = ?"), append(args, *v)
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

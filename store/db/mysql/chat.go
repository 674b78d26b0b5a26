package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
)

func (d *DB) UpsertChatSession(ctx context.Context, upsert *store.UpsertChatSession) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sess := upsert.Session
	stmt := "INSERT INTO `chat_sessions` (`id`, `user_id`, `title`, `thread_id`, `created_ts`) VALUES (?, ?, ?, ?, ?)" +
		" ON DUPLICATE KEY UPDATE `title` = VALUES(`title`), `thread_id` = VALUES(`thread_id`)"
	if _, err := tx.ExecContext(ctx, stmt, sess.ID, sess.UserID, sess.Title, nullableString(sess.ThreadID), sess.CreatedTs); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM `chat_messages` WHERE `session_id` = ?", sess.ID); err != nil {
		return err
	}
	for _, m := range upsert.Messages {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO `chat_messages` (`session_id`, `role`, `content`, `created_ts`) VALUES (?, ?, ?, UNIX_TIMESTAMP())",
			sess.ID, m.Role, m.Content); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListChatSessions(ctx context.Context, find *store.FindChatSession) ([]*store.ChatSession, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "`user_id` = ?"), append(args, *v)
	}
	query := fmt.Sprintf(
		"SELECT `id`, `user_id`, `title`, `thread_id`, `created_ts` FROM `chat_sessions` WHERE %s ORDER BY `created_ts` DESC, `id` DESC",
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.ChatSession
	for rows.Next() {
		s := &store.ChatSession{}
		var threadID sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &threadID, &s.CreatedTs); err != nil {
			return nil, err
		}
		s.ThreadID = threadID.String
		list = append(list, s)
	}
	return list, rows.Err()
}

func (d *DB) ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	query := "SELECT `id`, `session_id`, `role`, `content`, `created_ts` FROM `chat_messages` WHERE `session_id` = ? ORDER BY `id` ASC"
	rows, err := d.db.QueryContext(ctx, query, find.SessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.ChatMessage
	for rows.Next() {
		m := &store.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (d *DB) DeleteChatSession(ctx context.Context, sessionID string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM `chat_messages` WHERE `session_id` = ?", sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM `chat_sessions` WHERE `id` = ?", sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SaveOutboundMessage records a message the bot sent to a guest. meta holds kind/id/status for de-dup.
func (s *Store) SaveOutboundMessage(ctx context.Context, chatID int64, content string, meta map[string]string) error {
	metaJSON := []byte("{}")
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal meta: %w", err)
		}
		metaJSON = b
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO outbound_messages (chat_id, content, meta)
		VALUES ($1, $2, $3::jsonb)`,
		chatID, content, string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("save outbound message: %w", err)
	}
	return nil
}

// SentNotificationWithin reports whether the same kind/id/status notification went out during the last window.
func (s *Store) SentNotificationWithin(ctx context.Context, kind string, id int64, status string, window time.Duration) (bool, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM outbound_messages
		WHERE meta->>'kind' = $1 AND meta->>'id' = $2 AND meta->>'status' = $3
		  AND created_at > $4`,
		kind, strconv.FormatInt(id, 10), status, s.now().Add(-window),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sent notifications: %w", err)
	}
	return count > 0, nil
}

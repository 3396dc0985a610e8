package repository

import "log/slog"

// InsertAuditLog 记录一条用户操作
// 审计由各个 handler 在调用引擎前后负责写入，引擎本身不做任何记录
func (r *Repository) InsertAuditLog(userID int64, username string, action string) error {
	query := `
		INSERT INTO audit_log (user_id, username, action)
		VALUES ($1, $2, $3)
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	slog.Info("审计", "user_id", userID, "username", username, "action", action)

	_, err := r.dbpool.ExecContext(ctx, query, userID, username, action)
	return err
}

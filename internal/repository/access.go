package repository

import (
	"database/sql"
	"errors"

	"github.com/photon27/duty-bot/backend/internal/domain"
)

// IsAdmin 判断是否为主管理员，管理员由配置静态指定
func (r *Repository) IsAdmin(userID int64) bool {
	return userID == r.cfg.Admin.ID
}

// CheckAccess 判断用户是否有权使用机器人：
// 访问名单中的活跃记录，或运维负责人身份
func (r *Repository) CheckAccess(userID int64) (bool, error) {
	query := `
		SELECT is_active FROM access_list WHERE user_id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	var isActive bool
	err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(&isActive)
	switch {
	case err == nil && isActive:
		return true, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	return r.IsDirector(userID)
}

func (r *Repository) IsDirector(userID int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM directors WHERE user_id = $1)
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	var exists bool
	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// GrantAccess 发放普通访问权限，重复发放会重新激活记录
func (r *Repository) GrantAccess(userID int64, username string, grantedBy int64) error {
	query := `
		INSERT INTO access_list (user_id, username, granted_by, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			is_active = TRUE,
			granted_at = now()
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, userID, username, grantedBy)
	return err
}

// RevokeAccess 收回普通访问权限，负责人身份不受影响
func (r *Repository) RevokeAccess(userID int64) error {
	query := `
		UPDATE access_list SET is_active = FALSE WHERE user_id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, userID)
	return err
}

// AddDirector 任命运维负责人，同时确保其在访问名单中处于活跃状态
func (r *Repository) AddDirector(userID int64, addedBy int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	accessQuery := `
		INSERT INTO access_list (user_id, username, granted_by, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET is_active = TRUE
	`
	if _, err := tx.ExecContext(ctx, accessQuery, userID, "", addedBy); err != nil {
		return err
	}

	directorQuery := `
		INSERT INTO directors (user_id, added_by)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, directorQuery, userID, addedBy); err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveDirector 解除负责人身份，普通访问权限保留
func (r *Repository) RemoveDirector(userID int64) error {
	query := `
		DELETE FROM directors WHERE user_id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, userID)
	return err
}

func (r *Repository) GetAllAccessRecords() ([]*domain.AccessRecord, error) {
	query := `
		SELECT user_id, COALESCE(username, ''), COALESCE(granted_by, 0), granted_at, is_active
		FROM access_list
		WHERE is_active = TRUE
		ORDER BY granted_at DESC
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.AccessRecord, 0)
	for rows.Next() {
		record := &domain.AccessRecord{}
		dst := []any{&record.UserID, &record.Username, &record.GrantedBy, &record.GrantedAt, &record.IsActive}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *Repository) GetAllDirectors() ([]*domain.Director, error) {
	query := `
		SELECT d.user_id, COALESCE(a.username, ''), COALESCE(d.added_by, 0), d.added_at
		FROM directors d
		LEFT JOIN access_list a ON d.user_id = a.user_id
		ORDER BY d.added_at DESC
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	directors := make([]*domain.Director, 0)
	for rows.Next() {
		director := &domain.Director{}
		dst := []any{&director.UserID, &director.Username, &director.AddedBy, &director.AddedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		directors = append(directors, director)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return directors, nil
}

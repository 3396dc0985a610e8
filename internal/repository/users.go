package repository

import (
	"github.com/photon27/duty-bot/backend/internal/domain"
)

// SaveUser 保存或更新用户的基础资料
func (r *Repository) SaveUser(user *domain.BotUser) error {
	query := `
		INSERT INTO bot_users (user_id, username, email, employee_name, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), now())
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			email = COALESCE(EXCLUDED.email, bot_users.email),
			employee_name = COALESCE(EXCLUDED.employee_name, bot_users.employee_name),
			updated_at = now()
		RETURNING created_at, updated_at
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{user.UserID, user.Username, user.Email, user.EmployeeName}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetUser(userID int64) (*domain.BotUser, error) {
	query := `
		SELECT COALESCE(username, ''), COALESCE(email, ''), COALESCE(employee_name, ''), created_at, updated_at
		FROM bot_users WHERE user_id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	user := &domain.BotUser{
		UserID: userID,
	}

	dst := []any{&user.Username, &user.Email, &user.EmployeeName, &user.CreatedAt, &user.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateEmployeeName 更新用户绑定的员工名字
// 名字是否在花名册中由调用方校验
func (r *Repository) UpdateEmployeeName(userID int64, employeeName string) error {
	query := `
		UPDATE bot_users SET employee_name = $1, updated_at = now() WHERE user_id = $2
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, employeeName, userID)
	return err
}

// UpdateEmail 更新用户的通知邮箱，没有邮箱的用户收不到提醒
func (r *Repository) UpdateEmail(userID int64, email string) error {
	query := `
		UPDATE bot_users SET email = $1, updated_at = now() WHERE user_id = $2
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, email, userID)
	return err
}

func (r *Repository) GetUserSettings(userID int64) (*domain.UserSettings, error) {
	query := `
		SELECT remind_before_hour, daily_remind_time
		FROM user_settings WHERE user_id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	settings := &domain.UserSettings{
		UserID: userID,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(&settings.RemindBeforeHour, &settings.DailyRemindTime); err != nil {
		return nil, err
	}

	return settings, nil
}

// UpdateUserSettings 部分更新用户的提醒设置，nil 字段保持原值
func (r *Repository) UpdateUserSettings(userID int64, remindBeforeHour *bool, dailyRemindTime *string) error {
	query := `
		INSERT INTO user_settings (user_id, remind_before_hour, daily_remind_time)
		VALUES ($1, COALESCE($2, FALSE), $3)
		ON CONFLICT (user_id) DO UPDATE SET
			remind_before_hour = COALESCE($2, user_settings.remind_before_hour),
			daily_remind_time = COALESCE($3, user_settings.daily_remind_time)
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, userID, remindBeforeHour, dailyRemindTime)
	return err
}

// GetAllReminderTargets 返回所有绑定了员工名字的用户及其设置，供后台扫描使用
func (r *Repository) GetAllReminderTargets() ([]*domain.ReminderTarget, error) {
	query := `
		SELECT u.user_id, COALESCE(u.email, ''), u.employee_name,
		       COALESCE(s.remind_before_hour, FALSE), s.daily_remind_time
		FROM bot_users u
		LEFT JOIN user_settings s ON u.user_id = s.user_id
		WHERE u.employee_name IS NOT NULL
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	targets := make([]*domain.ReminderTarget, 0)
	for rows.Next() {
		target := &domain.ReminderTarget{}
		dst := []any{&target.UserID, &target.Email, &target.EmployeeName, &target.RemindBeforeHour, &target.DailyRemindTime}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return targets, nil
}

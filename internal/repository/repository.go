package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/photon27/duty-bot/backend/internal/config"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

// Init 确保所有表都存在
// 机器人的存储很小，直接在启动时建表，不引入迁移工具
func (r *Repository) Init(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS access_list (
			user_id BIGINT PRIMARY KEY,
			username TEXT,
			granted_by BIGINT,
			granted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS directors (
			user_id BIGINT PRIMARY KEY REFERENCES access_list(user_id) ON DELETE CASCADE,
			added_by BIGINT,
			added_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS bot_users (
			user_id BIGINT PRIMARY KEY,
			username TEXT,
			email TEXT,
			employee_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id BIGINT PRIMARY KEY REFERENCES bot_users(user_id) ON DELETE CASCADE,
			remind_before_hour BOOLEAN NOT NULL DEFAULT FALSE,
			daily_remind_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT,
			username TEXT,
			action TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, statement := range statements {
		if _, err := r.dbpool.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return nil
}

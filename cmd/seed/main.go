package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/photon27/duty-bot/backend/internal/config"
	"github.com/photon27/duty-bot/backend/internal/repository"
	"github.com/photon27/duty-bot/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 生成演示工作簿
	 **********************************************/
	if err := seed.GenerateDemoWorkbook(cfg.Schedule.WorkbookPath); err != nil {
		logger.Error("无法生成演示工作簿", "error", err)
		return
	}

	/**********************************************
	 * 连接数据库并写入演示数据
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.Init(ctx); err != nil {
		logger.Error("无法初始化数据库表", "error", err)
		return
	}

	if err := seed.SeedAccess(repo, cfg.Admin.ID); err != nil {
		logger.Error("无法写入演示访问权限", "error", err)
		return
	}

	logger.Info("演示数据已就绪")
}

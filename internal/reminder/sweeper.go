package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/photon27/duty-bot/backend/internal/config"
	"github.com/photon27/duty-bot/backend/internal/domain"
	"github.com/photon27/duty-bot/backend/internal/repository"
	"github.com/photon27/duty-bot/backend/internal/schedule"
)

const QueueName = "notify_queue"

// Sweeper 周期性地检查谁需要收到提醒并把通知投递到队列
// 每一轮只读取一次索引快照，整轮计算都基于同一个版本，
// 扫描过程绝不修改引擎状态
type Sweeper struct {
	cfg    *config.Config
	engine *schedule.Engine
	repo   *repository.Repository
	rdb    *redis.Client
	ch     *amqp.Channel

	// 便于测试注入时间
	now func() time.Time
}

func NewSweeper(cfg *config.Config, engine *schedule.Engine, repo *repository.Repository, rdb *redis.Client, ch *amqp.Channel) *Sweeper {
	return &Sweeper{
		cfg:    cfg,
		engine: engine,
		repo:   repo,
		rdb:    rdb,
		ch:     ch,
		now:    time.Now,
	}
}

// Run 以配置的周期运行扫描，直到 ctx 取消
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.cfg.Reminder.Interval) * time.Second)
	defer ticker.Stop()

	slog.Info("提醒扫描已启动", "interval", s.cfg.Reminder.Interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("提醒扫描已停止")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	targets, err := s.repo.GetAllReminderTargets()
	if err != nil {
		slog.Error("无法获取提醒用户列表", "error", err)
		return
	}

	now := s.now()
	idx := s.engine.Snapshot()
	dateKey := now.Format("2006-01-02")

	for _, target := range targets {
		if target.Email == "" {
			continue
		}

		merged := schedule.MergedOn(idx, target.EmployeeName, dateKey)

		if target.RemindBeforeHour {
			if interval, ok := dueShiftReminder(merged, now, s.cfg.Reminder.LeadMinutes); ok {
				key := fmt.Sprintf("reminder:shift_soon:%d:%s:%s", target.UserID, dateKey, interval.Start)
				s.deliver(ctx, key, domain.NotifyMessage{
					Type: "shift_soon",
					To:   target.Email,
					Data: domain.ShiftSoonNotifyData{
						EmployeeName: target.EmployeeName,
						Date:         dateKey,
						Time:         interval.Time(),
						LeadMinutes:  s.cfg.Reminder.LeadMinutes,
					},
				})
			}
		}

		if dueDailyReminder(target.DailyRemindTime, now) && len(merged) > 0 {
			intervals := make([]string, 0, len(merged))
			for _, interval := range merged {
				intervals = append(intervals, interval.Time())
			}

			key := fmt.Sprintf("reminder:daily:%d:%s", target.UserID, dateKey)
			s.deliver(ctx, key, domain.NotifyMessage{
				Type: "daily_schedule",
				To:   target.Email,
				Data: domain.DailyScheduleNotifyData{
					EmployeeName: target.EmployeeName,
					Date:         dateKey,
					Intervals:    intervals,
				},
			})
		}
	}
}

// dueShiftReminder 找出恰好在 lead 分钟后开始的区间
// 只看当天的班次，按分钟粒度比较，扫描周期不超过一分钟时不会漏报
func dueShiftReminder(merged []domain.MergedInterval, now time.Time, lead int) (domain.MergedInterval, bool) {
	minuteOfDay := now.Hour()*60 + now.Minute()
	for _, interval := range merged {
		if interval.StartMinute == minuteOfDay+lead {
			return interval, true
		}
	}
	return domain.MergedInterval{}, false
}

// dueDailyReminder 判断是否到了用户设定的每日提醒时间
func dueDailyReminder(dailyRemindTime *string, now time.Time) bool {
	return dailyRemindTime != nil && *dailyRemindTime == now.Format("15:04")
}

// deliver 先抢占去重标记再投递，保证重启或多实例下同一条提醒至多发一次
// redis 不可用时宁可不发也不重复发
func (s *Sweeper) deliver(ctx context.Context, dedupeKey string, message domain.NotifyMessage) {
	opCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Redis.OperationExpiration)*time.Second)
	defer cancel()

	ok, err := s.rdb.SetNX(opCtx, dedupeKey, 1, time.Duration(s.cfg.Reminder.DedupeTTL)*time.Second).Result()
	if err != nil {
		slog.Error("去重标记写入失败，本次提醒跳过", "key", dedupeKey, "error", err)
		return
	}
	if !ok {
		return
	}

	body, err := json.Marshal(message)
	if err != nil {
		slog.Error("通知序列化失败", "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := s.ch.PublishWithContext(
		pubCtx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		slog.Error("通知投递失败", "type", message.Type, "error", err)
		return
	}

	slog.Info("通知已投递", "type", message.Type, "to", message.To)
}

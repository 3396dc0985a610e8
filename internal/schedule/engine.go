package schedule

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/photon27/duty-bot/backend/internal/config"
	"github.com/photon27/duty-bot/backend/internal/domain"
)

// Engine 是排班索引的唯一持有者
// 索引通过原子指针发布：重新摄取总是先构建完整的新索引再整体替换，
// 并发读者要么看到旧索引要么看到新索引，不需要加锁
// 所有查询都是对当前快照的纯计算，不会修改引擎状态
type Engine struct {
	cfg    *config.Config
	reader *Reader
	cache  *SnapshotCache

	index    atomic.Pointer[domain.ScheduleIndex]
	reloadMu sync.Mutex

	// 便于测试注入时间
	now func() time.Time
}

func NewEngine(cfg *config.Config) *Engine {
	e := &Engine{
		cfg:    cfg,
		reader: NewReader(cfg.Schedule.WorkbookPath),
		cache:  NewSnapshotCache(cfg.Schedule.SnapshotPath),
		now:    time.Now,
	}
	e.index.Store(emptyIndex())
	return e
}

func emptyIndex() *domain.ScheduleIndex {
	return &domain.ScheduleIndex{
		Employees:   []string{},
		Schedule:    map[string][]domain.ShiftEntry{},
		GeneratedAt: time.Now(),
	}
}

// Snapshot 返回当前已发布的索引
// 调用方在一次计算内应只取一次快照，避免跨越重载读到两个版本
func (e *Engine) Snapshot() *domain.ScheduleIndex {
	return e.index.Load()
}

// LoadOrParse 为启动时的两路初始化：
// 快照比源表格新就直接加载快照，否则执行完整摄取
// 快照损坏回退到摄取；摄取失败回退到任何可用的快照；
// 两者都不可用时以空索引启动，绝不让进程崩溃
func (e *Engine) LoadOrParse() error {
	if e.cache.Fresh(e.cfg.Schedule.WorkbookPath) {
		if idx, err := e.cache.Load(); err == nil {
			e.index.Store(idx)
			slog.Info("索引已从快照加载", "days", len(idx.Schedule), "employees", len(idx.Employees))
			return nil
		} else {
			slog.Warn("快照损坏，改为重新摄取", "error", err)
		}
	}

	if err := e.Reload(); err != nil {
		if idx, loadErr := e.cache.Load(); loadErr == nil {
			e.index.Store(idx)
			slog.Warn("源表格不可用，已回退到旧快照", "error", err)
			return nil
		}
		slog.Warn("源表格和快照均不可用，以空索引启动", "error", err)
		return nil
	}

	return nil
}

// Reload 执行一次完整摄取并写快照
// 成功则原子替换索引，失败则保持旧索引不变并把错误上抛
func (e *Engine) Reload() error {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	employees, records, err := e.reader.Read()
	if err != nil {
		return err
	}

	idx := &domain.ScheduleIndex{
		Employees:   employees,
		Schedule:    normalize(records),
		GeneratedAt: e.now(),
	}

	// 快照写失败不影响新索引生效
	if err := e.cache.Save(idx); err != nil {
		slog.Error("快照写入失败", "error", err)
	}

	e.index.Store(idx)
	return nil
}

// Roster 返回花名册，顺序与源表格一致
func (e *Engine) Roster() []string {
	return e.Snapshot().Employees
}

// Day 返回某天的全部原始记录，没有数据时返回空切片
func (e *Engine) Day(date time.Time) []domain.ShiftEntry {
	entries := e.Snapshot().Schedule[date.Format("2006-01-02")]
	if entries == nil {
		return []domain.ShiftEntry{}
	}
	return entries
}

// Merged 返回某员工某天合并后的区间
func (e *Engine) Merged(employee string, date time.Time) []domain.MergedInterval {
	merged := mergeForEmployee(e.Snapshot(), employee, date.Format("2006-01-02"))
	if merged == nil {
		return []domain.MergedInterval{}
	}
	return merged
}

// distinctEmployees 收集某天出现过的员工，按首次出现的顺序
func distinctEmployees(entries []domain.ShiftEntry) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, entry := range entries {
		if _, ok := seen[entry.Employee]; ok {
			continue
		}
		seen[entry.Employee] = struct{}{}
		names = append(names, entry.Employee)
	}
	return names
}

// dutyAt 在给定索引上求时刻 t 的值班人
// 区间按左闭右开判定：正好在结束时刻已经不算值班
// 多名员工的区间同时覆盖 t 时返回最先遇到的一个，先后顺序不作保证
func dutyAt(idx *domain.ScheduleIndex, t time.Time) *domain.DutyInfo {
	dateKey := t.Format("2006-01-02")
	entries := idx.Schedule[dateKey]
	if len(entries) == 0 {
		return nil
	}

	minuteOfDay := t.Hour()*60 + t.Minute()

	for _, employee := range distinctEmployees(entries) {
		for _, interval := range mergeForEmployee(idx, employee, dateKey) {
			if minuteOfDay >= interval.StartMinute && minuteOfDay < interval.EndMinute {
				return &domain.DutyInfo{
					Employee: employee,
					Time:     interval.Time(),
				}
			}
		}
	}

	return nil
}

// DutyNow 返回当前的值班人，没有人值班时返回 nil
func (e *Engine) DutyNow() *domain.DutyInfo {
	return dutyAt(e.Snapshot(), e.now())
}

// AvailableMonths 返回存在排班数据的月份，按时间倒序
// 早于配置下限年份的历史数据不参与统计
func (e *Engine) AvailableMonths() []domain.MonthOption {
	type yearMonth struct {
		year  int
		month int
	}

	seen := make(map[yearMonth]struct{})
	for key := range e.Snapshot().Schedule {
		t, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		if t.Year() < e.cfg.Schedule.MinStatsYear {
			continue
		}
		seen[yearMonth{t.Year(), int(t.Month())}] = struct{}{}
	}

	months := make([]yearMonth, 0, len(seen))
	for ym := range seen {
		months = append(months, ym)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].year != months[j].year {
			return months[i].year > months[j].year
		}
		return months[i].month > months[j].month
	})

	options := make([]domain.MonthOption, 0, len(months))
	for _, ym := range months {
		options = append(options, monthOption(ym.year, ym.month))
	}
	return options
}

// Week 返回从 start 起连续 7 天的排班
// 指定员工时每天给出其合并区间，否则给出当天全部原始记录
func (e *Engine) Week(start time.Time, employee string) []domain.WeekDay {
	idx := e.Snapshot()
	week := make([]domain.WeekDay, 0, 7)

	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		key := date.Format("2006-01-02")
		day := domain.WeekDay{
			Date: key,
			// 周一记为 0，与前端的显示约定一致
			Weekday: (int(date.Weekday()) + 6) % 7,
		}

		if employee != "" {
			day.Merged = mergeForEmployee(idx, employee, key)
		} else {
			day.Entries = idx.Schedule[key]
		}
		week = append(week, day)
	}

	return week
}

// DepartmentStats 见 departmentStats
func (e *Engine) DepartmentStats(year, month int) *domain.DepartmentStats {
	return departmentStats(e.Snapshot(), year, month)
}

// EmployeeMonthStats 见 employeeMonthStats
func (e *Engine) EmployeeMonthStats(employee string, year, month int) *domain.EmployeeMonthStats {
	return employeeMonthStats(e.Snapshot(), employee, year, month, e.now(), e.cfg.Schedule.HourlyRate)
}

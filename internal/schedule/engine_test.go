package schedule

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/photon27/duty-bot/backend/internal/config"
	"github.com/photon27/duty-bot/backend/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Schedule.WorkbookPath = filepath.Join(dir, "graph.xlsx")
	cfg.Schedule.SnapshotPath = filepath.Join(dir, "schedule_data.json")
	cfg.Schedule.HourlyRate = 160
	cfg.Schedule.MinStatsYear = 2025
	return cfg
}

func TestEngineReloadPublishesIndex(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, cfg.Schedule.WorkbookPath, testWorkbookSheets())

	engine := NewEngine(cfg)
	if err := engine.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if roster := engine.Roster(); len(roster) != 2 {
		t.Errorf("花名册 = %v", roster)
	}

	day := engine.Day(time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local))
	if len(day) != 2 {
		t.Errorf("2025-09-01 的记录数 = %d, 期望 2", len(day))
	}

	merged := engine.Merged("Иванов Иван", time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local))
	if len(merged) != 1 || merged[0].Time() != "09:00-13:00" {
		t.Errorf("合并区间 = %+v", merged)
	}

	// 摄取成功后应当写出快照
	if _, err := os.Stat(cfg.Schedule.SnapshotPath); err != nil {
		t.Errorf("快照未落盘: %v", err)
	}
}

func TestEngineReloadIdempotent(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, cfg.Schedule.WorkbookPath, testWorkbookSheets())

	engine := NewEngine(cfg)
	if err := engine.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	first := engine.Snapshot()

	if err := engine.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	second := engine.Snapshot()

	if !reflect.DeepEqual(first.Employees, second.Employees) {
		t.Errorf("两次摄取的花名册不一致: %v vs %v", first.Employees, second.Employees)
	}
	if !reflect.DeepEqual(first.Schedule, second.Schedule) {
		t.Error("两次摄取的排班数据不一致")
	}
}

func TestEngineReloadFailureKeepsOldIndex(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, cfg.Schedule.WorkbookPath, testWorkbookSheets())

	engine := NewEngine(cfg)
	if err := engine.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if err := os.Remove(cfg.Schedule.WorkbookPath); err != nil {
		t.Fatal(err)
	}

	err := engine.Reload()
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, 期望 ErrSourceUnavailable", err)
	}
	if roster := engine.Roster(); len(roster) != 2 {
		t.Errorf("摄取失败后旧索引应保持不变, 花名册 = %v", roster)
	}
}

func TestEngineLoadOrParseFreshSnapshot(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, cfg.Schedule.WorkbookPath, testWorkbookSheets())

	// 快照内容与工作簿刻意不同，用来区分数据来源
	snapshot := `{"employees":["Из снапшота"],"schedule":{"2025-09-01":[{"employee":"Из снапшота","time":"09:00-13:00"}]}}`
	if err := os.WriteFile(cfg.Schedule.SnapshotPath, []byte(snapshot), 0644); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(cfg.Schedule.WorkbookPath, old, old); err != nil {
		t.Fatal(err)
	}

	engine := NewEngine(cfg)
	if err := engine.LoadOrParse(); err != nil {
		t.Fatalf("LoadOrParse: %v", err)
	}
	if roster := engine.Roster(); len(roster) != 1 || roster[0] != "Из снапшота" {
		t.Errorf("花名册 = %v, 期望来自快照", roster)
	}
}

func TestEngineLoadOrParseStaleSnapshot(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, cfg.Schedule.WorkbookPath, testWorkbookSheets())

	if err := os.WriteFile(cfg.Schedule.SnapshotPath, []byte(`{"employees":["Из снапшота"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(cfg.Schedule.SnapshotPath, old, old); err != nil {
		t.Fatal(err)
	}

	engine := NewEngine(cfg)
	if err := engine.LoadOrParse(); err != nil {
		t.Fatalf("LoadOrParse: %v", err)
	}
	if roster := engine.Roster(); len(roster) != 2 {
		t.Errorf("花名册 = %v, 过期快照应触发重新摄取", roster)
	}
}

func TestEngineLoadOrParseCorruptSnapshot(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, cfg.Schedule.WorkbookPath, testWorkbookSheets())

	if err := os.WriteFile(cfg.Schedule.SnapshotPath, []byte("{не json"), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(cfg.Schedule.WorkbookPath, old, old); err != nil {
		t.Fatal(err)
	}

	engine := NewEngine(cfg)
	if err := engine.LoadOrParse(); err != nil {
		t.Fatalf("LoadOrParse: %v", err)
	}
	if roster := engine.Roster(); len(roster) != 2 {
		t.Errorf("花名册 = %v, 快照损坏应回退到完整摄取", roster)
	}
}

func TestEngineLoadOrParseSourceGoneFallsBackToSnapshot(t *testing.T) {
	cfg := testConfig(t)

	snapshot := `{"employees":["Из снапшота"],"schedule":{}}`
	if err := os.WriteFile(cfg.Schedule.SnapshotPath, []byte(snapshot), 0644); err != nil {
		t.Fatal(err)
	}

	engine := NewEngine(cfg)
	if err := engine.LoadOrParse(); err != nil {
		t.Fatalf("LoadOrParse: %v", err)
	}
	if roster := engine.Roster(); len(roster) != 1 || roster[0] != "Из снапшота" {
		t.Errorf("花名册 = %v, 源表格缺失时应回退到快照", roster)
	}
}

func TestEngineLoadOrParseNothingAvailable(t *testing.T) {
	cfg := testConfig(t)

	engine := NewEngine(cfg)
	if err := engine.LoadOrParse(); err != nil {
		t.Fatalf("LoadOrParse: %v", err)
	}

	// 以空索引启动，所有查询都安全返回空结果
	if roster := engine.Roster(); len(roster) != 0 {
		t.Errorf("花名册 = %v", roster)
	}
	if day := engine.Day(time.Now()); len(day) != 0 {
		t.Errorf("Day = %v", day)
	}
	if duty := engine.DutyNow(); duty != nil {
		t.Errorf("DutyNow = %v", duty)
	}
	if months := engine.AvailableMonths(); len(months) != 0 {
		t.Errorf("AvailableMonths = %v", months)
	}
}

func TestDutyAtBoundaries(t *testing.T) {
	idx := indexWith(map[string][]domain.ShiftEntry{
		"2025-09-01": entriesFor("Иванов Иван", "09:00-17:00"),
	})

	at := func(hour, minute int) *domain.DutyInfo {
		return dutyAt(idx, time.Date(2025, 9, 1, hour, minute, 0, 0, time.Local))
	}

	// 区间左闭右开
	if duty := at(8, 59); duty != nil {
		t.Errorf("08:59 不应有人值班, 实际 %+v", duty)
	}
	if duty := at(9, 0); duty == nil || duty.Employee != "Иванов Иван" {
		t.Errorf("09:00 应当在班, 实际 %+v", duty)
	}
	if duty := at(16, 59); duty == nil {
		t.Error("16:59 应当在班")
	}
	if duty := at(17, 0); duty != nil {
		t.Errorf("17:00 已经下班, 实际 %+v", duty)
	}
}

func TestDutyAtReportsMergedInterval(t *testing.T) {
	idx := indexWith(map[string][]domain.ShiftEntry{
		"2025-09-01": entriesFor("Иванов Иван", "09:00-13:00", "13:00-17:00"),
	})

	duty := dutyAt(idx, time.Date(2025, 9, 1, 14, 0, 0, 0, time.Local))
	if duty == nil || duty.Time != "09:00-17:00" {
		t.Errorf("值班信息 = %+v, 期望合并后的 09:00-17:00", duty)
	}
}

func TestEngineDutyNowUsesInjectedClock(t *testing.T) {
	cfg := testConfig(t)
	engine := NewEngine(cfg)
	engine.index.Store(indexWith(map[string][]domain.ShiftEntry{
		"2025-09-01": entriesFor("Иванов Иван", "09:00-13:00"),
	}))

	engine.now = func() time.Time {
		return time.Date(2025, 9, 1, 10, 0, 0, 0, time.Local)
	}
	if duty := engine.DutyNow(); duty == nil || duty.Employee != "Иванов Иван" {
		t.Errorf("DutyNow = %+v", duty)
	}

	engine.now = func() time.Time {
		return time.Date(2025, 9, 1, 20, 0, 0, 0, time.Local)
	}
	if duty := engine.DutyNow(); duty != nil {
		t.Errorf("DutyNow = %+v, 期望 nil", duty)
	}
}

func TestAvailableMonths(t *testing.T) {
	cfg := testConfig(t)
	engine := NewEngine(cfg)
	engine.index.Store(indexWith(map[string][]domain.ShiftEntry{
		"2024-12-01": entriesFor("Иванов Иван", "09:00-13:00"),
		"2025-08-15": entriesFor("Иванов Иван", "09:00-13:00"),
		"2025-09-01": entriesFor("Иванов Иван", "09:00-13:00"),
		"2025-09-02": entriesFor("Петрова Анна", "09:00-13:00"),
	}))

	months := engine.AvailableMonths()
	if len(months) != 2 {
		t.Fatalf("月份数 = %d, 期望过滤掉 2024 后剩 2 个", len(months))
	}
	if months[0].Name != "Сентябрь 2025" || months[1].Name != "Август 2025" {
		t.Errorf("月份 = %v, %v, 期望按时间倒序", months[0].Name, months[1].Name)
	}
	if months[0].Year != 2025 || months[0].Month != 9 || months[0].MonthName != "Сентябрь" {
		t.Errorf("第一个月份 = %+v", months[0])
	}
}

func TestWeek(t *testing.T) {
	cfg := testConfig(t)
	engine := NewEngine(cfg)
	engine.index.Store(indexWith(map[string][]domain.ShiftEntry{
		"2025-09-01": entriesFor("Иванов Иван", "09:00-13:00", "13:00-17:00"),
		"2025-09-03": entriesFor("Петрова Анна", "09:00-13:00"),
	}))

	// 2025-09-01 是周一
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local)

	week := engine.Week(start, "")
	if len(week) != 7 {
		t.Fatalf("天数 = %d, 期望 7", len(week))
	}
	if week[0].Weekday != 0 || week[6].Weekday != 6 {
		t.Errorf("Weekday = %d..%d, 期望周一记 0", week[0].Weekday, week[6].Weekday)
	}
	if week[0].Date != "2025-09-01" || week[6].Date != "2025-09-07" {
		t.Errorf("日期范围 = %s..%s", week[0].Date, week[6].Date)
	}
	if len(week[0].Entries) != 2 || len(week[2].Entries) != 1 || len(week[1].Entries) != 0 {
		t.Errorf("原始记录分布不符: %+v", week)
	}

	// 指定员工时返回合并区间
	week = engine.Week(start, "Иванов Иван")
	if len(week[0].Merged) != 1 || week[0].Merged[0].Time() != "09:00-17:00" {
		t.Errorf("周一的合并区间 = %+v", week[0].Merged)
	}
	if len(week[2].Merged) != 0 {
		t.Errorf("周三不应有本人的区间: %+v", week[2].Merged)
	}
}

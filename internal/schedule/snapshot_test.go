package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/photon27/duty-bot/backend/internal/domain"
)

func TestSnapshotFresh(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.Local)

	if !snapshotFresh(base.Add(time.Second), base) {
		t.Error("快照新于源表格时应视为新鲜")
	}
	if snapshotFresh(base, base) {
		t.Error("修改时间相同不算新鲜")
	}
	if snapshotFresh(base.Add(-time.Second), base) {
		t.Error("快照旧于源表格不算新鲜")
	}
}

func TestSnapshotFreshMissingFiles(t *testing.T) {
	dir := t.TempDir()
	cache := NewSnapshotCache(filepath.Join(dir, "snapshot.json"))

	source := filepath.Join(dir, "graph.xlsx")
	if cache.Fresh(source) {
		t.Error("快照文件缺失时不应判定为新鲜")
	}

	if err := os.WriteFile(cache.path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if cache.Fresh(source) {
		t.Error("源表格缺失时不应判定为新鲜")
	}
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache := NewSnapshotCache(filepath.Join(dir, "snapshot.json"))

	idx := &domain.ScheduleIndex{
		Employees: []string{"Иванов Иван", "Петрова Анна"},
		Schedule: map[string][]domain.ShiftEntry{
			"2025-09-01": entriesFor("Иванов Иван", "09:00-13:00"),
		},
		GeneratedAt: time.Now(),
	}

	if err := cache.Save(idx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Employees) != 2 || loaded.Employees[0] != "Иванов Иван" {
		t.Errorf("Employees = %v", loaded.Employees)
	}
	entries := loaded.Schedule["2025-09-01"]
	if len(entries) != 1 || entries[0].Time != "09:00-13:00" {
		t.Errorf("Schedule = %v", loaded.Schedule)
	}

	// 临时文件应当已被重命名走
	matches, _ := filepath.Glob(filepath.Join(dir, "snapshot-*.json"))
	if len(matches) != 0 {
		t.Errorf("落盘后残留临时文件: %v", matches)
	}
}

func TestSnapshotLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	cache := NewSnapshotCache(filepath.Join(dir, "snapshot.json"))

	if err := os.WriteFile(cache.path, []byte("{не json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(); err == nil {
		t.Error("损坏的快照应当返回错误")
	}
}

func TestSnapshotLoadEmptyFields(t *testing.T) {
	dir := t.TempDir()
	cache := NewSnapshotCache(filepath.Join(dir, "snapshot.json"))

	if err := os.WriteFile(cache.path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	idx, err := cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Employees == nil || idx.Schedule == nil {
		t.Error("缺失字段应还原为空集合而不是 nil")
	}
}

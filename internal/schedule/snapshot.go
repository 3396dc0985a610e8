package schedule

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/photon27/duty-bot/backend/internal/domain"
)

// snapshotFile 是快照的落盘结构，保持人类可读的 JSON 布局
type snapshotFile struct {
	Employees []string                       `json:"employees"`
	Schedule  map[string][]domain.ShiftEntry `json:"schedule"`
}

// SnapshotCache 把归一化后的索引持久化到单个 JSON 文件，
// 用于避免每次启动都重新解析源表格
type SnapshotCache struct {
	path string
}

func NewSnapshotCache(path string) *SnapshotCache {
	return &SnapshotCache{path: path}
}

// snapshotFresh 是纯粹的新鲜度谓词：快照必须严格新于源表格
// 单独拆出来方便注入时间进行测试
func snapshotFresh(snapshotMTime, sourceMTime time.Time) bool {
	return snapshotMTime.After(sourceMTime)
}

// Fresh 判断快照是否可以代替一次完整摄取
// 任何一个文件缺失都视为不新鲜
func (c *SnapshotCache) Fresh(sourcePath string) bool {
	snapshotInfo, err := os.Stat(c.path)
	if err != nil {
		return false
	}
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return false
	}
	return snapshotFresh(snapshotInfo.ModTime(), sourceInfo.ModTime())
}

// Load 读取快照并还原为索引
// 读取或解析失败都作为缓存未命中处理，由调用方回退到完整摄取
func (c *SnapshotCache) Load() (*domain.ScheduleIndex, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}

	var snapshot snapshotFile
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}

	employees := snapshot.Employees
	if employees == nil {
		employees = []string{}
	}
	schedule := snapshot.Schedule
	if schedule == nil {
		schedule = map[string][]domain.ShiftEntry{}
	}

	return &domain.ScheduleIndex{
		Employees:   employees,
		Schedule:    schedule,
		GeneratedAt: time.Now(),
	}, nil
}

// Save 序列化索引并落盘
// 先写临时文件再重命名，读者不会观察到写到一半的快照
func (c *SnapshotCache) Save(idx *domain.ScheduleIndex) error {
	data, err := json.MarshalIndent(snapshotFile{
		Employees: idx.Employees,
		Schedule:  idx.Schedule,
	}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "snapshot-*.json")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	slog.Info("快照已保存", "path", c.path, "days", len(idx.Schedule))
	return nil
}

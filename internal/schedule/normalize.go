package schedule

import (
	"github.com/photon27/duty-bot/backend/internal/domain"
)

// normalize 将原始记录按日期分组
// 同一员工同一天的重复/重叠记录原样保留，索引始终是源数据的忠实拷贝，
// 合并只在查询时进行
func normalize(records []RawShiftRecord) map[string][]domain.ShiftEntry {
	schedule := make(map[string][]domain.ShiftEntry)

	for _, record := range records {
		schedule[record.Date] = append(schedule[record.Date], domain.ShiftEntry{
			Employee: record.Employee,
			Time:     record.Time,
		})
	}

	return schedule
}

package schedule

import (
	"sort"

	"github.com/photon27/duty-bot/backend/internal/domain"
)

// MergedOn 在给定的索引快照上计算某员工某日的合并区间
// 供需要把一整轮计算固定在同一个快照上的调用方使用（如后台提醒扫描）
func MergedOn(idx *domain.ScheduleIndex, employee string, dateKey string) []domain.MergedInterval {
	return mergeForEmployee(idx, employee, dateKey)
}

// mergeForEmployee 取出某员工某日的全部时段并合并为最大连续区间
// 没有记录时返回 nil（与"存在零时长班次"区分开）
//
// 首尾严格相接或重叠的时段会被并入当前区间，被完全覆盖的时段直接吸收；
// 只要存在间隙（哪怕 1 分钟）就会产生两个独立区间，不存在"近似相邻"。
func mergeForEmployee(idx *domain.ScheduleIndex, employee string, dateKey string) []domain.MergedInterval {
	entries := idx.Schedule[dateKey]
	if len(entries) == 0 {
		return nil
	}

	var ranges []parsedRange
	for _, entry := range entries {
		if entry.Employee != employee {
			continue
		}
		r, ok := parseTimeRange(entry.Time)
		if !ok {
			continue
		}
		ranges = append(ranges, r)
	}
	if len(ranges) == 0 {
		return nil
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].startMinute < ranges[j].startMinute
	})

	var merged []domain.MergedInterval
	current := ranges[0]

	flush := func() {
		merged = append(merged, domain.MergedInterval{
			ShiftNumber: len(merged) + 1,
			Start:       current.startStr,
			End:         current.endStr,
			StartMinute: current.startMinute,
			EndMinute:   current.endMinute,
		})
	}

	for _, r := range ranges[1:] {
		if r.startMinute <= current.endMinute {
			// 相接或重叠，向后延伸当前区间；被完全覆盖的时段不改变终点
			if r.endMinute > current.endMinute {
				current.endMinute = r.endMinute
				current.endStr = r.endStr
			}
			continue
		}
		flush()
		current = r
	}
	flush()

	return merged
}

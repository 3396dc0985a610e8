package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/photon27/duty-bot/backend/internal/domain"
)

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.Local).Day()
}

func dateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// departmentStats 计算整个部门某个月的统计
// 基于原始记录逐条累加：同一员工重叠的记录会被重复计入，这与员工个人
// 统计（基于合并区间）刻意不对称，两边都以源表格各自的口径为准
// 只在最后做一次保留一位小数的舍入
func departmentStats(idx *domain.ScheduleIndex, year, month int) *domain.DepartmentStats {
	totalHours := 0.0
	employeeHours := make(map[string]float64)
	unassigned := make([]domain.UnassignedSlot, 0)

	for day := 1; day <= daysInMonth(year, month); day++ {
		for _, entry := range idx.Schedule[dateKey(year, month, day)] {
			r, ok := parseTimeRange(entry.Time)
			if !ok {
				continue
			}

			hours := r.hours()
			totalHours += hours

			if isPlaceholderEmployee(entry.Employee) {
				unassigned = append(unassigned, domain.UnassignedSlot{
					Date: fmt.Sprintf("%02d.%02d", day, month),
					Time: entry.Time,
				})
				continue
			}
			employeeHours[entry.Employee] += hours
		}
	}

	for name, hours := range employeeHours {
		employeeHours[name] = round1(hours)
	}

	return &domain.DepartmentStats{
		TotalHours:      round1(totalHours),
		EmployeeHours:   employeeHours,
		UnassignedSlots: unassigned,
	}
}

func mergedHoursForDay(idx *domain.ScheduleIndex, employee string, year, month, day int) (float64, bool) {
	merged := mergeForEmployee(idx, employee, dateKey(year, month, day))
	if len(merged) == 0 {
		return 0, false
	}

	hours := 0.0
	for _, interval := range merged {
		hours += float64(interval.EndMinute-interval.StartMinute) / 60.0
	}
	return hours, true
}

// employeeMonthStats 计算单个员工某个月的统计
// 总时长基于合并区间；按 now 划分"已工作/剩余"：
// 过去的月份全部算已工作，未来的月份全部算剩余，
// 当前月份只累计严格早于今天的日期（今天本身不计入已工作）
func employeeMonthStats(idx *domain.ScheduleIndex, employee string, year, month int, now time.Time, hourlyRate float64) *domain.EmployeeMonthStats {
	totalHours := 0.0
	workedDays := 0

	for day := 1; day <= daysInMonth(year, month); day++ {
		hours, ok := mergedHoursForDay(idx, employee, year, month, day)
		if !ok {
			continue
		}
		totalHours += hours
		workedDays++
	}

	var workedHours, remainingHours float64
	switch {
	case year < now.Year() || (year == now.Year() && month < int(now.Month())):
		workedHours = totalHours
		remainingHours = 0
	case year == now.Year() && month == int(now.Month()):
		for day := 1; day < now.Day(); day++ {
			if hours, ok := mergedHoursForDay(idx, employee, year, month, day); ok {
				workedHours += hours
			}
		}
		remainingHours = math.Max(0, totalHours-workedHours)
	default:
		workedHours = 0
		remainingHours = totalHours
	}

	return &domain.EmployeeMonthStats{
		TotalHours:     round1(totalHours),
		WorkedHours:    round1(workedHours),
		RemainingHours: round1(remainingHours),
		WorkedDays:     workedDays,
		Salary:         int(math.Round(totalHours * hourlyRate)),
		EarnedSalary:   int(math.Round(workedHours * hourlyRate)),
	}
}

// PayDate 返回某个统计月份对应的发薪日：下个月的 5 号
func PayDate(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, 5, 0, 0, 0, 0, time.Local)
}

package domain

import "time"

// ShiftEntry 表示源表格中某一天的一条原始排班记录
// 这里保留源数据的原样，不做合并和去重，合并推迟到查询时进行
type ShiftEntry struct {
	Employee string `json:"employee"`
	Time     string `json:"time"`
}

// ScheduleIndex 是排班数据的聚合根
// 构建完成后视为不可变，重新摄取时整体替换，绝不原地修改
// Schedule 的 key 为 ISO 日期（YYYY-MM-DD），只有存在有效记录的日期才会出现
type ScheduleIndex struct {
	Employees   []string                `json:"employees"`
	Schedule    map[string][]ShiftEntry `json:"schedule"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// MergedInterval 是查询时临时生成的合并区间，不会被持久化
// 分钟数内部使用，跨午夜的班次 EndMinute 会超过 1440
type MergedInterval struct {
	ShiftNumber int    `json:"shiftNumber"`
	Start       string `json:"start"`
	End         string `json:"end"`
	StartMinute int    `json:"-"`
	EndMinute   int    `json:"-"`
}

// Time 以 "HH:MM-HH:MM" 的形式渲染合并区间
func (m MergedInterval) Time() string {
	return m.Start + "-" + m.End
}

// DutyInfo 表示"当前谁在值班"的查询结果
type DutyInfo struct {
	Employee string `json:"employee"`
	Time     string `json:"time"`
}

// MonthOption 表示统计可选的一个月份，名称使用源表格的语言
type MonthOption struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"monthName"`
	Name      string `json:"name"`
}

// WeekDay 表示周视图中的一天
// 未指定员工时返回当天的原始记录，指定员工时返回其合并后的区间
type WeekDay struct {
	Date    string           `json:"date"`
	Weekday int              `json:"weekday"`
	Entries []ShiftEntry     `json:"entries,omitempty"`
	Merged  []MergedInterval `json:"merged,omitempty"`
}

// UnassignedSlot 表示某天没有负责人的时段，日期格式为 DD.MM
type UnassignedSlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// DepartmentStats 为整个部门某个月的统计
// 注意这里基于原始记录累加，重叠的记录会被重复计入，与源表格保持一致
type DepartmentStats struct {
	TotalHours      float64            `json:"totalHours"`
	EmployeeHours   map[string]float64 `json:"employeeHours"`
	UnassignedSlots []UnassignedSlot   `json:"unassignedSlots"`
}

// EmployeeMonthStats 为单个员工某个月的统计
// 与部门统计不同，这里基于合并后的区间累加
type EmployeeMonthStats struct {
	TotalHours     float64 `json:"totalHours"`
	WorkedHours    float64 `json:"workedHours"`
	RemainingHours float64 `json:"remainingHours"`
	WorkedDays     int     `json:"workedDays"`
	Salary         int     `json:"salary"`
	EarnedSalary   int     `json:"earnedSalary"`
}

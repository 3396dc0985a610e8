package schedule

import "strings"

// 源表格沿用了原有部署的俄语表头，同时兼容英文变体
// 匹配规则：不区分大小写的子串匹配，按别名顺序第一个命中的列生效
var (
	dateAliases     = []string{"дата", "date", "день", "day", "число"}
	timeAliases     = []string{"время", "time", "часы", "hours", "период", "period"}
	employeeAliases = []string{"ответственный", "responsible", "сотрудник", "employee", "фио", "fio", "имя", "name"}

	// 存放花名册的工作表
	rosterSheetAliases = []string{"служебный лист 2", "служебный", "service", "staff", "сотрудники"}

	// 服务性/报表类工作表，不包含排班数据，解析时整表跳过
	serviceSheetAliases = []string{"служебный", "отчет", "информация", "тикеты", "service"}

	// 负责人单元格中视为"无人"的占位符
	placeholderTokens = []string{"nan", "none", "ответственный"}
)

// scheduleColumns 表示一张排班表中三个必需列的下标
type scheduleColumns struct {
	date     int
	time     int
	employee int
}

func matchAlias(value string, aliases []string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, alias := range aliases {
		if strings.Contains(v, alias) {
			return true
		}
	}
	return false
}

func findColumn(header []string, aliases []string) (int, bool) {
	for i, col := range header {
		if matchAlias(col, aliases) {
			return i, true
		}
	}
	return 0, false
}

// findScheduleColumns 在表头中定位日期/时间/负责人三列
// 任意一列缺失则返回 ok=false，调用方应跳过整张表而不是报错
func findScheduleColumns(header []string) (scheduleColumns, bool) {
	cols := scheduleColumns{}
	var ok bool

	if cols.date, ok = findColumn(header, dateAliases); !ok {
		return cols, false
	}
	if cols.time, ok = findColumn(header, timeAliases); !ok {
		return cols, false
	}
	if cols.employee, ok = findColumn(header, employeeAliases); !ok {
		return cols, false
	}

	return cols, true
}

func isRosterSheet(name string) bool {
	return matchAlias(name, rosterSheetAliases)
}

func isServiceSheet(name string) bool {
	return matchAlias(name, serviceSheetAliases)
}

// isPlaceholderEmployee 判断负责人单元格是否为占位符（即该时段无人负责）
func isPlaceholderEmployee(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	for _, token := range placeholderTokens {
		if v == token {
			return true
		}
	}
	return false
}

package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parsedRange 表示一条解析成功的时间段
// 分钟数已做跨午夜修正：当结束时间早于开始时间时，结束分钟数加上 24 小时，
// 因此 endMinute 可以超过 1440，且恒有 endMinute >= startMinute
// 渲染用的字符串保留源数据的分钟写法，只对小时补零
type parsedRange struct {
	startMinute int
	endMinute   int
	startStr    string
	endStr      string
}

func (p parsedRange) hours() float64 {
	return float64(p.endMinute-p.startMinute) / 60.0
}

func parseClock(s string) (hour int, minute int, minuteRaw string, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, "", false
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, "", false
	}

	minuteRaw = strings.TrimSpace(parts[1])
	minute, err = strconv.Atoi(minuteRaw)
	if err != nil {
		return 0, 0, "", false
	}

	return hour, minute, minuteRaw, true
}

// parseTimeRange 解析 "H:MM-H:MM" 形式的时间段
// 解析失败返回 ok=false，由调用方静默丢弃该记录
// 摄取阶段已经过滤过一轮格式，这里是合并/统计前的第二道防线
func parseTimeRange(s string) (parsedRange, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return parsedRange{}, false
	}

	startHour, startMin, startMinRaw, ok := parseClock(parts[0])
	if !ok {
		return parsedRange{}, false
	}
	endHour, endMin, endMinRaw, ok := parseClock(parts[1])
	if !ok {
		return parsedRange{}, false
	}

	start := startHour*60 + startMin
	end := endHour*60 + endMin
	if end < start {
		// 跨午夜的班次，结束时间落在第二天
		end += 24 * 60
	}

	return parsedRange{
		startMinute: start,
		endMinute:   end,
		startStr:    fmt.Sprintf("%02d:%s", startHour, startMinRaw),
		endStr:      fmt.Sprintf("%02d:%s", endHour, endMinRaw),
	}, true
}

// 摄取阶段可能遇到的日期写法
// excelize 返回的是按单元格样式格式化后的字符串，因此这里需要兼容多种布局
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"02.01.06",
	"2006/01/02",
	"1/2/06",
	"1/2/2006",
	"01-02-06",
}

// parseDateCell 将日期单元格解析为 ISO 日期 key（YYYY-MM-DD）
func parseDateCell(s string) (string, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	return "", false
}

package schedule

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSourceUnavailable 表示源表格整体不可用（文件缺失或无法打开）
// 此时调用方应保留旧索引或回退到快照，而不是带着半份数据继续
var ErrSourceUnavailable = errors.New("源表格不可用")

// RawShiftRecord 是从源表格中读出的一条原始三元组
// Date 已归一化为 ISO 日期，Time 和 Employee 保留原样
type RawShiftRecord struct {
	Date     string
	Time     string
	Employee string
}

// Reader 负责从 Excel 工作簿中发现花名册和各月排班表，并产出原始记录
// 工作表和列都通过别名启发式定位，定位失败只会跳过对应的表，不会中断摄取
type Reader struct {
	path string
}

func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Read 打开工作簿并返回花名册和全部有效的原始记录
// 打开失败返回 ErrSourceUnavailable，不会产生部分结果
func (r *Reader) Read() ([]string, []RawShiftRecord, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()

	employees := r.readRoster(f, sheets)
	records := r.readSchedules(f, sheets)

	slog.Info("源表格摄取完成", "employees", len(employees), "records", len(records))
	return employees, records, nil
}

// readRoster 在第一张命中别名的工作表中读取花名册
// 取第一个存在非空单元格的列，保留源顺序，找不到则返回空名单
func (r *Reader) readRoster(f *excelize.File, sheets []string) []string {
	for _, sheet := range sheets {
		if !isRosterSheet(sheet) {
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}

		// 表头占第一行，数据从第二行开始
		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}

		for col := 0; col < width; col++ {
			var values []string
			for _, row := range rows[1:] {
				if col >= len(row) {
					continue
				}
				if v := strings.TrimSpace(row[col]); v != "" {
					values = append(values, v)
				}
			}
			if len(values) > 0 {
				slog.Info("找到花名册", "sheet", sheet, "employees", len(values))
				return values
			}
		}
	}

	slog.Warn("没有找到花名册工作表")
	return []string{}
}

// readSchedules 遍历所有非服务性工作表并收集原始排班记录
func (r *Reader) readSchedules(f *excelize.File, sheets []string) []RawShiftRecord {
	var records []RawShiftRecord

	for _, sheet := range sheets {
		if isServiceSheet(sheet) {
			slog.Info("跳过服务性工作表", "sheet", sheet)
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			slog.Error("无法读取工作表", "sheet", sheet, "error", err)
			continue
		}
		if len(rows) < 2 {
			continue
		}

		cols, ok := findScheduleColumns(rows[0])
		if !ok {
			slog.Warn("工作表缺少必需的列，已跳过", "sheet", sheet, "header", rows[0])
			continue
		}

		count := 0
		for _, row := range rows[1:] {
			record, ok := parseScheduleRow(row, cols)
			if !ok {
				continue
			}
			records = append(records, record)
			count++
		}

		slog.Info("工作表处理完成", "sheet", sheet, "records", count)
	}

	return records
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseScheduleRow 校验并转换一行数据，不合法的行静默丢弃
func parseScheduleRow(row []string, cols scheduleColumns) (RawShiftRecord, bool) {
	dateKey, ok := parseDateCell(cellAt(row, cols.date))
	if !ok {
		return RawShiftRecord{}, false
	}

	timeStr := cellAt(row, cols.time)
	if timeStr == "" {
		return RawShiftRecord{}, false
	}
	// 必须是形如 HH:MM-HH:MM 的区间
	if !strings.Contains(timeStr, ":") || !strings.Contains(timeStr, "-") {
		return RawShiftRecord{}, false
	}

	employee := cellAt(row, cols.employee)
	if isPlaceholderEmployee(employee) {
		return RawShiftRecord{}, false
	}

	return RawShiftRecord{
		Date:     dateKey,
		Time:     timeStr,
		Employee: employee,
	}, true
}

package schedule

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

type sheetSpec struct {
	name string
	rows [][]string
}

// writeWorkbook 生成测试用的工作簿文件
func writeWorkbook(t *testing.T, path string, sheets []sheetSpec) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				t.Fatal(err)
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				t.Fatal(err)
			}
		}
		for r, row := range sheet.rows {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatal(err)
				}
				if err := f.SetCellValue(sheet.name, cell, value); err != nil {
					t.Fatal(err)
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func testWorkbookSheets() []sheetSpec {
	return []sheetSpec{
		{
			name: "Сотрудники",
			rows: [][]string{
				{"Сотрудники"},
				{"Иванов Иван"},
				{"Петрова Анна"},
			},
		},
		{
			name: "Сентябрь 2025",
			rows: [][]string{
				{"Дата", "Время", "Ответственный"},
				{"2025-09-01", "09:00-13:00", "Иванов Иван"},
				{"2025-09-01", "13:00-17:00", "Петрова Анна"},
				{"2025-09-02", "09:00-13:00", "Иванов Иван"},
			},
		},
	}
}

func TestReaderRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.xlsx")
	writeWorkbook(t, path, testWorkbookSheets())

	employees, records, err := NewReader(path).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(employees) != 2 || employees[0] != "Иванов Иван" || employees[1] != "Петрова Анна" {
		t.Errorf("花名册 = %v", employees)
	}
	if len(records) != 3 {
		t.Fatalf("记录数 = %d, 期望 3", len(records))
	}
	first := records[0]
	if first.Date != "2025-09-01" || first.Time != "09:00-13:00" || first.Employee != "Иванов Иван" {
		t.Errorf("第一条记录 = %+v", first)
	}
}

func TestReaderMissingFile(t *testing.T) {
	_, _, err := NewReader(filepath.Join(t.TempDir(), "нет.xlsx")).Read()
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, 期望 ErrSourceUnavailable", err)
	}
}

func TestReaderSkipsServiceSheets(t *testing.T) {
	// 服务性工作表即使带着合法表头也要整表跳过
	path := filepath.Join(t.TempDir(), "graph.xlsx")
	writeWorkbook(t, path, []sheetSpec{
		{
			name: "Отчет",
			rows: [][]string{
				{"Дата", "Время", "Ответственный"},
				{"2025-09-01", "09:00-13:00", "Иванов Иван"},
			},
		},
		{
			name: "Сентябрь 2025",
			rows: [][]string{
				{"Дата", "Время", "Ответственный"},
				{"2025-09-01", "13:00-17:00", "Петрова Анна"},
			},
		},
	})

	_, records, err := NewReader(path).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 1 || records[0].Employee != "Петрова Анна" {
		t.Errorf("记录 = %+v, 服务性工作表不应被摄取", records)
	}
}

func TestReaderSkipsSheetsWithoutColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.xlsx")
	writeWorkbook(t, path, []sheetSpec{
		{
			name: "Заметки",
			rows: [][]string{
				{"Колонка", "Другая"},
				{"раз", "два"},
			},
		},
		{
			name: "Сентябрь 2025",
			rows: [][]string{
				{"Дата", "Время", "Ответственный"},
				{"2025-09-01", "09:00-13:00", "Иванов Иван"},
			},
		},
	})

	_, records, err := NewReader(path).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("记录数 = %d, 缺列的工作表应被跳过", len(records))
	}
}

func TestReaderDropsInvalidRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.xlsx")
	writeWorkbook(t, path, []sheetSpec{
		{
			name: "Сентябрь 2025",
			rows: [][]string{
				{"Дата", "Время", "Ответственный"},
				{"2025-09-01", "09:00-13:00", "Иванов Иван"}, // 合法
				{"2025-09-01", "13:00-17:00", "nan"},         // 占位符负责人
				{"2025-09-01", "13:00-17:00", ""},            // 空负责人
				{"2025-09-01", "выходной", "Иванов Иван"},    // 非时间段
				{"не дата", "09:00-13:00", "Иванов Иван"},    // 非日期
				{"2025-09-01"}, // 残缺行
			},
		},
	})

	_, records, err := NewReader(path).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("记录数 = %d, 期望只剩 1 条合法记录: %+v", len(records), records)
	}
}

func TestReaderRosterMissing(t *testing.T) {
	// 没有花名册工作表时返回空名单，摄取不中断
	path := filepath.Join(t.TempDir(), "graph.xlsx")
	writeWorkbook(t, path, []sheetSpec{
		{
			name: "Сентябрь 2025",
			rows: [][]string{
				{"Дата", "Время", "Ответственный"},
				{"2025-09-01", "09:00-13:00", "Иванов Иван"},
			},
		},
	})

	employees, records, err := NewReader(path).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(employees) != 0 {
		t.Errorf("花名册 = %v, 期望为空", employees)
	}
	if len(records) != 1 {
		t.Errorf("记录数 = %d", len(records))
	}
}

func TestReaderRosterSkipsEmptyColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.xlsx")
	writeWorkbook(t, path, []sheetSpec{
		{
			name: "Сотрудники",
			rows: [][]string{
				{"", "Сотрудники"},
				{"", "Иванов Иван"},
				{"", "Петрова Анна"},
			},
		},
	})

	employees, _, err := NewReader(path).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(employees) != 2 || employees[0] != "Иванов Иван" {
		t.Errorf("花名册 = %v, 期望取第一个有数据的列", employees)
	}
}

func TestNormalizeGroupsByDate(t *testing.T) {
	records := []RawShiftRecord{
		{Date: "2025-09-01", Time: "09:00-13:00", Employee: "Иванов Иван"},
		{Date: "2025-09-02", Time: "09:00-13:00", Employee: "Петрова Анна"},
		{Date: "2025-09-01", Time: "09:00-13:00", Employee: "Иванов Иван"}, // 原样保留的重复
	}

	grouped := normalize(records)
	if len(grouped) != 2 {
		t.Fatalf("日期数 = %d, 期望 2", len(grouped))
	}
	if len(grouped["2025-09-01"]) != 2 {
		t.Errorf("2025-09-01 的记录数 = %d, 重复记录不应被去重", len(grouped["2025-09-01"]))
	}
}

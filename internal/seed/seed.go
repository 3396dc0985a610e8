package seed

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/photon27/duty-bot/backend/internal/repository"
)

// 演示用的花名册
var demoEmployees = []string{
	"Иванов Иван",
	"Петрова Анна",
	"Сидоров Алексей",
	"Кузнецова Мария",
}

// 演示用的时段，最后一个跨午夜
var demoSlots = []string{
	"09:00-13:00",
	"13:00-17:00",
	"17:00-21:00",
	"21:00-01:00",
}

// GenerateDemoWorkbook 生成一份演示用的排班工作簿：
// 一张花名册表和当前月/下个月两张排班表，表头使用解析器认识的别名
func GenerateDemoWorkbook(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	// 花名册
	rosterSheet := "Служебный лист 2"
	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		return err
	}
	if err := f.SetCellValue(rosterSheet, "A1", "Сотрудники"); err != nil {
		return err
	}
	for i, name := range demoEmployees {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetCellValue(rosterSheet, cell, name); err != nil {
			return err
		}
	}

	now := time.Now()
	months := []time.Time{
		time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local),
		time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.Local),
	}

	for _, month := range months {
		if err := writeMonthSheet(f, month); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return err
	}

	slog.Info("演示工作簿已生成", "path", path)
	return nil
}

var sheetMonthNames = map[time.Month]string{
	time.January:   "Январь",
	time.February:  "Февраль",
	time.March:     "Март",
	time.April:     "Апрель",
	time.May:       "Май",
	time.June:      "Июнь",
	time.July:      "Июль",
	time.August:    "Август",
	time.September: "Сентябрь",
	time.October:   "Октябрь",
	time.November:  "Ноябрь",
	time.December:  "Декабрь",
}

func writeMonthSheet(f *excelize.File, month time.Time) error {
	sheet := fmt.Sprintf("%s %d", sheetMonthNames[month.Month()], month.Year())
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Дата", "Время", "Ответственный"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	daysInMonth := time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.Local).Day()
	row := 2

	for day := 1; day <= daysInMonth; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", month.Year(), int(month.Month()), day)
		for slotIdx, slot := range demoSlots {
			// 按天轮换员工，保证每个人都有排班
			employee := demoEmployees[(day+slotIdx)%len(demoEmployees)]

			if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), date); err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), slot); err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, fmt.Sprintf("C%d", row), employee); err != nil {
				return err
			}
			row++
		}
	}

	return nil
}

// 演示用的普通用户 ID
var demoUserIDs = []int64{100001, 100002, 100003}

// SeedAccess 给演示用户发放访问权限，并任命第一个为负责人
func SeedAccess(repo *repository.Repository, adminID int64) error {
	for i, userID := range demoUserIDs {
		username := fmt.Sprintf("demo_user_%d", i+1)
		if err := repo.GrantAccess(userID, username, adminID); err != nil {
			return err
		}
	}

	if err := repo.AddDirector(demoUserIDs[0], adminID); err != nil {
		return err
	}

	slog.Info("演示访问权限已写入", "users", len(demoUserIDs))
	return nil
}

package schedule

import (
	"fmt"

	"github.com/photon27/duty-bot/backend/internal/domain"
)

// 月份名称跟随源表格的语言，前端直接展示
var monthNames = map[int]string{
	1:  "Январь",
	2:  "Февраль",
	3:  "Март",
	4:  "Апрель",
	5:  "Май",
	6:  "Июнь",
	7:  "Июль",
	8:  "Август",
	9:  "Сентябрь",
	10: "Октябрь",
	11: "Ноябрь",
	12: "Декабрь",
}

func monthOption(year, month int) domain.MonthOption {
	name := monthNames[month]
	return domain.MonthOption{
		Year:      year,
		Month:     month,
		MonthName: name,
		Name:      fmt.Sprintf("%s %d", name, year),
	}
}

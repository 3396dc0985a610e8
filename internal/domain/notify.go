package domain

// NotifyMessage 为投递到通知队列中的消息
type NotifyMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ShiftSoonNotifyData struct {
	EmployeeName string `json:"employeeName"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	LeadMinutes  int    `json:"leadMinutes"`
}

type DailyScheduleNotifyData struct {
	EmployeeName string   `json:"employeeName"`
	Date         string   `json:"date"`
	Intervals    []string `json:"intervals"`
}

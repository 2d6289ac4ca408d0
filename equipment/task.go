package equipment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaskType selects how a task is interpreted by the cash register
type TaskType int

const (
	TaskString TaskType = iota
	TaskRegistration
	TaskCloseCheck
	TaskCancelCheck
	TaskOpenCheckSell
	TaskPayment
	TaskOpenCheckReturn
	TaskReturn
	TaskCashIncome
	TaskCashOutcome
	TaskClientContact
	TaskReport
	TaskSyncTime
	TaskPrintHeader
	TaskPrintFooter
	TaskCut
)

var taskTypeNames = map[TaskType]string{
	TaskString:          "STRING",
	TaskRegistration:    "REGISTRATION",
	TaskCloseCheck:      "CLOSE_CHECK",
	TaskCancelCheck:     "CANCEL_CHECK",
	TaskOpenCheckSell:   "OPEN_CHECK_SELL",
	TaskPayment:         "PAYMENT",
	TaskOpenCheckReturn: "OPEN_CHECK_RETURN",
	TaskReturn:          "RETURN",
	TaskCashIncome:      "CASH_INCOME",
	TaskCashOutcome:     "CASH_OUTCOME",
	TaskClientContact:   "CLIENT_CONTACT",
	TaskReport:          "REPORT",
	TaskSyncTime:        "SYNC_TIME",
	TaskPrintHeader:     "PRINT_HEADER",
	TaskPrintFooter:     "PRINT_FOOTER",
	TaskCut:             "CUT",
}

// AllTaskTypes returns every declared task type in declaration order
func AllTaskTypes() []TaskType {
	types := make([]TaskType, 0, len(taskTypeNames))
	for t := TaskString; t <= TaskCut; t++ {
		types = append(types, t)
	}
	return types
}

// Valid reports whether t is one of the declared task types
func (t TaskType) Valid() bool {
	_, ok := taskTypeNames[t]
	return ok
}

func (t TaskType) String() string {
	if name, ok := taskTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TaskType(%d)", int(t))
}

// MarshalText encodes the task type as its upper-case name
func (t TaskType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown task type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes an upper-case task type name
func (t *TaskType) UnmarshalText(text []byte) error {
	for k, v := range taskTypeNames {
		if v == string(text) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown task type %q", string(text))
}

// Alignment of a printed string
type Alignment string

const (
	AlignLeft   Alignment = "LEFT"
	AlignCenter Alignment = "CENTER"
	AlignRight  Alignment = "RIGHT"
)

// ReportType is the kind of report requested by a REPORT task
type ReportType string

const (
	ReportZ          ReportType = "REPORT_Z"
	ReportX          ReportType = "REPORT_X"
	ReportDepartment ReportType = "REPORT_DEPARTMENT"
	ReportCashiers   ReportType = "REPORT_CASHIERS"
	ReportHours      ReportType = "REPORT_HOURS"
)

// TypeClose is the payment method used to close a check
type TypeClose int

const (
	TypeCloseCash TypeClose = iota
	TypeCloseElectronic
)

// TaskParams holds the optional, typed arguments of a task.
// A nil field means the caller did not supply it.
type TaskParams struct {
	Price      *decimal.Decimal `json:"price,omitempty"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	Tax        *int             `json:"tax,omitempty"`
	Sum        *decimal.Decimal `json:"sum,omitempty"`
	TypeClose  *TypeClose       `json:"typeClose,omitempty"`
	Wrap       *bool            `json:"wrap,omitempty"`
	Alignment  *Alignment       `json:"alignment,omitempty"`
	Bold       *bool            `json:"bold,omitempty"`
	Italic     *bool            `json:"italic,omitempty"`
	ReportType *ReportType      `json:"reportType,omitempty"`
}

// Task is a single abstract equipment command
type Task struct {
	Type   TaskType   `json:"type"`
	Data   string     `json:"data,omitempty"`
	Params TaskParams `json:"params"`
}

package ecr

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nixxel-company-limited/ecr-task-server/device"
	"github.com/nixxel-company-limited/ecr-task-server/equipment"
)

// clientContactProperty is the fiscal tag holding the buyer's phone or e-mail
const clientContactProperty = 1008

// executeTask interprets a single task. A nil error means the batch may go on.
func (e *ECR) executeTask(task equipment.Task) error {
	switch task.Type {
	case equipment.TaskString:
		return e.printString(task)
	case equipment.TaskRegistration:
		return e.registration(task)
	case equipment.TaskCloseCheck:
		return e.closeCheck()
	case equipment.TaskCancelCheck:
		return e.cancelCheck()
	case equipment.TaskOpenCheckSell:
		return e.openCheck(device.CheckTypeSell)
	case equipment.TaskPayment:
		return e.payment(task)
	case equipment.TaskOpenCheckReturn:
		return e.openCheck(device.CheckTypeReturn)
	case equipment.TaskReturn:
		return e.refund(task)
	case equipment.TaskCashIncome:
		return e.cashOperation(task, true)
	case equipment.TaskCashOutcome:
		return e.cashOperation(task, false)
	case equipment.TaskClientContact:
		return e.clientContact(task)
	case equipment.TaskReport:
		return e.report(task)
	case equipment.TaskSyncTime:
		return e.syncTime()
	case equipment.TaskPrintHeader:
		return check(e.driver.PrintHeader(), "print header")
	case equipment.TaskPrintFooter:
		return check(e.driver.PrintFooter(), "print footer")
	case equipment.TaskCut:
		e.cut()
		return nil
	default:
		e.logger.Error("unsupported task type", zap.Stringer("type", task.Type))
		return invalid(fmt.Sprintf(e.messages.UnsupportedOperation, task.Type))
	}
}

func (e *ECR) printString(task equipment.Task) error {
	e.driver.SetCaption(task.Data)

	p := task.Params
	wrap := device.WrapNone
	if p.Wrap != nil && *p.Wrap {
		wrap = device.WrapWord
	}
	e.driver.SetTextWrap(wrap)

	alignment := equipment.AlignLeft
	if p.Alignment != nil {
		alignment = *p.Alignment
	}
	e.driver.SetAlignment(alignmentCode(alignment))
	e.driver.SetFontBold(p.Bold != nil && *p.Bold)
	e.driver.SetFontItalic(p.Italic != nil && *p.Italic)

	return check(e.driver.PrintString(), "print string")
}

func alignmentCode(a equipment.Alignment) int {
	switch a {
	case equipment.AlignCenter:
		return device.AlignmentCenter
	case equipment.AlignRight:
		return device.AlignmentRight
	default:
		return device.AlignmentLeft
	}
}

func (e *ECR) registration(task equipment.Task) error {
	if err := e.prepareItem(task); err != nil {
		return err
	}
	return check(e.driver.Registration(), "registration")
}

func (e *ECR) refund(task equipment.Task) error {
	if err := e.prepareItem(task); err != nil {
		return err
	}
	return check(e.driver.Return(), "return")
}

// prepareItem validates the item fields in order and loads them into the driver
func (e *ECR) prepareItem(task equipment.Task) error {
	if task.Data == "" {
		return invalid(e.messages.IncorrectProductName)
	}
	e.driver.SetName(task.Data)

	p := task.Params
	if !positive(p.Price) {
		return invalid(e.messages.IncorrectProductPrice)
	}
	e.driver.SetPrice(p.Price.InexactFloat64())

	if !positive(p.Quantity) {
		return invalid(e.messages.IncorrectProductQuantity)
	}
	e.driver.SetQuantity(p.Quantity.InexactFloat64())

	if p.Tax != nil {
		e.driver.SetTaxNumber(*p.Tax)
	}
	return nil
}

func positive(d *decimal.Decimal) bool {
	return d != nil && d.IsPositive()
}

func (e *ECR) payment(task equipment.Task) error {
	p := task.Params
	if !positive(p.Sum) {
		return invalid(e.messages.PaymentIncorrect)
	}
	e.driver.SetSum(p.Sum.InexactFloat64())

	if p.TypeClose == nil {
		return invalid(e.messages.TypeCloseIncorrect)
	}
	e.driver.SetTypeClose(int(*p.TypeClose))

	return check(e.driver.Payment(), "payment")
}

func (e *ECR) closeCheck() error {
	if e.driver.CheckState() == device.CheckStateClosed {
		return nil
	}
	return check(e.driver.CloseCheck(), "close check")
}

func (e *ECR) cancelCheck() error {
	return check(e.driver.CancelCheck(), "cancel check")
}

func (e *ECR) openCheck(checkType int) error {
	if err := e.prepareRegistration(); err != nil {
		return err
	}
	e.driver.SetCheckType(checkType)
	return check(e.driver.OpenCheck(), "open check")
}

func (e *ECR) cashOperation(task equipment.Task, income bool) error {
	if err := e.prepareRegistration(); err != nil {
		return err
	}

	sum := task.Params.Sum
	if !positive(sum) {
		return invalid(e.messages.IncorrectCashAmount)
	}
	e.driver.SetSum(sum.InexactFloat64())

	if income {
		return check(e.driver.CashIncome(), "cash income")
	}
	return check(e.driver.CashOutcome(), "cash outcome")
}

func (e *ECR) clientContact(task equipment.Task) error {
	e.driver.SetFiscalPropertyNumber(clientContactProperty)
	e.driver.SetFiscalPropertyType(device.FiscalPropertyTypeString)
	e.driver.SetFiscalPropertyValue(task.Data)
	return check(e.driver.WriteFiscalProperty(), "write fiscal property")
}

func (e *ECR) report(task equipment.Task) error {
	e.dropCheck()

	kind := task.Params.ReportType
	mode := device.ModeReportNoClear
	if kind != nil && *kind == equipment.ReportZ {
		mode = device.ModeReportClear
	}
	if err := e.setMode(mode); err != nil {
		return err
	}

	code, ok := reportCode(kind)
	if !ok {
		name := "<none>"
		if kind != nil {
			name = string(*kind)
		}
		e.logger.Error("unsupported report type", zap.String("report", name))
		return invalid(fmt.Sprintf(e.messages.UnsupportedReport, name))
	}

	e.driver.SetReportType(code)
	return check(e.driver.Report(), "report")
}

func reportCode(kind *equipment.ReportType) (int, bool) {
	if kind == nil {
		return 0, false
	}
	switch *kind {
	case equipment.ReportZ:
		return device.ReportZ, true
	case equipment.ReportX:
		return device.ReportX, true
	case equipment.ReportDepartment:
		return device.ReportDepartments, true
	case equipment.ReportCashiers:
		return device.ReportCashiers, true
	case equipment.ReportHours:
		return device.ReportHours, true
	default:
		return 0, false
	}
}

// syncTime writes a single captured instant as both date and time
func (e *ECR) syncTime() error {
	e.dropCheck()

	now := e.now()
	if err := check(e.driver.SetDate(now), "set date property"); err != nil {
		return err
	}
	if err := check(e.driver.SetTime(now), "set time property"); err != nil {
		return err
	}
	if err := check(e.driver.ApplyDate(), "set date"); err != nil {
		return err
	}
	return check(e.driver.ApplyTime(), "set time")
}

// cut tries a partial cut, then a full one. Neither failure fails the task.
func (e *ECR) cut() {
	err := check(e.driver.PartialCut(), "partial cut")
	if err == nil {
		return
	}
	e.logger.Warn("partial cut failed, trying full cut", zap.Error(err))

	if err := check(e.driver.FullCut(), "full cut"); err != nil {
		e.logger.Warn("full cut failed", zap.Error(err))
	}
}

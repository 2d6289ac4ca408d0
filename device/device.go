// Package device describes the fiscal register driver capability the
// interpreter needs, plus an in-memory simulator implementing it.
package device

import "time"

// ResultOK is the status returned by every successful driver call
const ResultOK = 0

// Operating modes
const (
	ModeSelect        = 0
	ModeRegistration  = 1
	ModeReportNoClear = 2
	ModeReportClear   = 3
)

// Check states
const (
	CheckStateClosed = 0
	CheckStateOpened = 1
)

// Check types
const (
	CheckTypeSell   = 1
	CheckTypeReturn = 2
)

// Text alignment codes
const (
	AlignmentLeft   = 0
	AlignmentCenter = 1
	AlignmentRight  = 2
)

// Text wrap codes
const (
	WrapNone = 0
	WrapWord = 1
)

// Report type codes
const (
	ReportZ           = 1
	ReportX           = 2
	ReportDepartments = 7
	ReportCashiers    = 8
	ReportHours       = 10
)

// Fiscal property value types
const (
	FiscalPropertyTypeString = 5
)

// Driver is the capability set of a fiscal register driver.
// Every setter and command returns a status; ResultOK means success,
// anything else leaves a result code and description on the driver.
type Driver interface {
	// Create allocates the driver handle
	Create() error

	// Destroy releases the driver handle
	Destroy() error

	SetDeviceSettings(settings string) int
	DeviceSettings() string
	SetDeviceEnabled(enabled bool) int

	SetName(name string) int
	SetPrice(price float64) int
	SetQuantity(quantity float64) int
	SetTaxNumber(tax int) int
	SetSum(sum float64) int
	SetTypeClose(typeClose int) int
	SetCaption(caption string) int
	SetTextWrap(wrap int) int
	SetAlignment(alignment int) int
	SetFontBold(bold bool) int
	SetFontItalic(italic bool) int
	SetCheckType(checkType int) int
	SetMode(mode int) int
	SetUserPassword(password string) int
	SetReportType(reportType int) int
	SetDate(date time.Time) int
	SetTime(t time.Time) int
	SetFiscalPropertyNumber(number int) int
	SetFiscalPropertyType(propertyType int) int
	SetFiscalPropertyValue(value string) int

	ResultCode() int
	ResultDescription() string
	CheckState() int
	Mode() int
	UserPassword() string

	Registration() int
	Return() int
	OpenCheck() int
	CloseCheck() int
	CancelCheck() int
	Payment() int
	CashIncome() int
	CashOutcome() int
	WriteFiscalProperty() int
	OpenSession() int
	ApplyMode() int
	Report() int
	PartialCut() int
	FullCut() int
	ApplyDate() int
	ApplyTime() int
	PrintString() int
	PrintHeader() int
	PrintFooter() int
}

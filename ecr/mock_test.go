package ecr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nixxel-company-limited/ecr-task-server/device"
)

// MockDriver is a recording implementation of device.Driver for testing.
// Every call is appended to calls; operations listed in fail return the
// given status and leave it as the driver's result code.
type MockDriver struct {
	calls []string
	fail  map[string]int

	mode       int
	pendMode   int
	checkState int
	password   string
	settings   string

	resultCode  int
	resultDescr string
	destroyErr  error
}

func newMockDriver() *MockDriver {
	return &MockDriver{
		fail:       make(map[string]int),
		password:   "30",
		checkState: device.CheckStateOpened,
	}
}

func (m *MockDriver) record(op string, args ...any) int {
	if len(args) > 0 {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		m.calls = append(m.calls, op+"("+strings.Join(parts, ",")+")")
	} else {
		m.calls = append(m.calls, op)
	}

	if code, ok := m.fail[op]; ok {
		m.resultCode = code
		m.resultDescr = strings.ToLower(op) + " failed"
		return code
	}
	m.resultCode = device.ResultOK
	m.resultDescr = "ok"
	return device.ResultOK
}

// count returns how many recorded calls start with prefix
func (m *MockDriver) count(prefix string) int {
	n := 0
	for _, c := range m.calls {
		if c == prefix || strings.HasPrefix(c, prefix+"(") {
			n++
		}
	}
	return n
}

func (m *MockDriver) Create() error { m.calls = append(m.calls, "Create"); return nil }

func (m *MockDriver) Destroy() error {
	m.calls = append(m.calls, "Destroy")
	return m.destroyErr
}

func (m *MockDriver) SetDeviceSettings(s string) int {
	code := m.record("SetDeviceSettings", s)
	if code == device.ResultOK {
		m.settings = s
	}
	return code
}

func (m *MockDriver) DeviceSettings() string { return m.settings }

func (m *MockDriver) SetDeviceEnabled(v bool) int { return m.record("SetDeviceEnabled", v) }
func (m *MockDriver) SetName(v string) int        { return m.record("SetName", v) }
func (m *MockDriver) SetPrice(v float64) int      { return m.record("SetPrice", v) }
func (m *MockDriver) SetQuantity(v float64) int   { return m.record("SetQuantity", v) }
func (m *MockDriver) SetTaxNumber(v int) int      { return m.record("SetTaxNumber", v) }
func (m *MockDriver) SetSum(v float64) int        { return m.record("SetSum", v) }
func (m *MockDriver) SetTypeClose(v int) int      { return m.record("SetTypeClose", v) }
func (m *MockDriver) SetCaption(v string) int     { return m.record("SetCaption", v) }
func (m *MockDriver) SetTextWrap(v int) int       { return m.record("SetTextWrap", v) }
func (m *MockDriver) SetAlignment(v int) int      { return m.record("SetAlignment", v) }
func (m *MockDriver) SetFontBold(v bool) int      { return m.record("SetFontBold", v) }
func (m *MockDriver) SetFontItalic(v bool) int    { return m.record("SetFontItalic", v) }
func (m *MockDriver) SetCheckType(v int) int      { return m.record("SetCheckType", v) }
func (m *MockDriver) SetUserPassword(v string) int {
	return m.record("SetUserPassword", v)
}
func (m *MockDriver) SetReportType(v int) int { return m.record("SetReportType", v) }
func (m *MockDriver) SetDate(v time.Time) int {
	return m.record("SetDate", v.Format(time.RFC3339))
}
func (m *MockDriver) SetTime(v time.Time) int {
	return m.record("SetTime", v.Format(time.RFC3339))
}
func (m *MockDriver) SetFiscalPropertyNumber(v int) int { return m.record("SetFiscalPropertyNumber", v) }
func (m *MockDriver) SetFiscalPropertyType(v int) int   { return m.record("SetFiscalPropertyType", v) }
func (m *MockDriver) SetFiscalPropertyValue(v string) int {
	return m.record("SetFiscalPropertyValue", v)
}

func (m *MockDriver) SetMode(v int) int {
	m.pendMode = v
	return m.record("SetMode", v)
}

func (m *MockDriver) ResultCode() int           { return m.resultCode }
func (m *MockDriver) ResultDescription() string { return m.resultDescr }
func (m *MockDriver) CheckState() int           { return m.checkState }
func (m *MockDriver) Mode() int                 { return m.mode }
func (m *MockDriver) UserPassword() string      { return m.password }

func (m *MockDriver) Registration() int        { return m.record("Registration") }
func (m *MockDriver) Return() int              { return m.record("Return") }
func (m *MockDriver) OpenCheck() int           { return m.record("OpenCheck") }
func (m *MockDriver) CloseCheck() int          { return m.record("CloseCheck") }
func (m *MockDriver) CancelCheck() int         { return m.record("CancelCheck") }
func (m *MockDriver) Payment() int             { return m.record("Payment") }
func (m *MockDriver) CashIncome() int          { return m.record("CashIncome") }
func (m *MockDriver) CashOutcome() int         { return m.record("CashOutcome") }
func (m *MockDriver) WriteFiscalProperty() int { return m.record("WriteFiscalProperty") }
func (m *MockDriver) OpenSession() int         { return m.record("OpenSession") }
func (m *MockDriver) Report() int              { return m.record("Report") }
func (m *MockDriver) PartialCut() int          { return m.record("PartialCut") }
func (m *MockDriver) FullCut() int             { return m.record("FullCut") }
func (m *MockDriver) ApplyDate() int           { return m.record("ApplyDate") }
func (m *MockDriver) ApplyTime() int           { return m.record("ApplyTime") }
func (m *MockDriver) PrintString() int         { return m.record("PrintString") }
func (m *MockDriver) PrintHeader() int         { return m.record("PrintHeader") }
func (m *MockDriver) PrintFooter() int         { return m.record("PrintFooter") }

func (m *MockDriver) ApplyMode() int {
	code := m.record("ApplyMode")
	if code == device.ResultOK {
		m.mode = m.pendMode
	}
	return code
}

var errDestroy = errors.New("handle busy")

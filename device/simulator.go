package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// Simulator result codes
const (
	ErrCodeSettings       = 1
	ErrCodeNotEnabled     = 2
	ErrCodeWrongMode      = 3
	ErrCodeSessionClosed  = 4
	ErrCodeCheckOpened    = 5
	ErrCodeCheckClosed    = 6
	ErrCodeInvalidParam   = 7
	ErrCodeWrongPassword  = 8
	ErrCodeNotEnoughFunds = 9
)

var simErrors = map[int]string{
	ResultOK:              "no errors",
	ErrCodeSettings:       "invalid device settings",
	ErrCodeNotEnabled:     "device is not enabled",
	ErrCodeWrongMode:      "command is not allowed in current mode",
	ErrCodeSessionClosed:  "session is not opened",
	ErrCodeCheckOpened:    "check is already opened",
	ErrCodeCheckClosed:    "check is not opened",
	ErrCodeInvalidParam:   "invalid parameter value",
	ErrCodeWrongPassword:  "wrong user password",
	ErrCodeNotEnoughFunds: "not enough cash in drawer",
}

// DefaultSimulatorSettings is used when no settings were applied
const DefaultSimulatorSettings = `{"Model":"simulator","Port":"USB","UserPassword":"30"}`

type failure struct {
	code        int
	description string
}

// Simulator is an in-memory fiscal register. It keeps mode, session and
// check state and rejects commands the way a real register would.
// It is safe for concurrent use.
type Simulator struct {
	mu sync.Mutex

	settings string
	enabled  bool
	mode     int
	password string
	session  bool

	checkState int
	checkType  int
	checkTotal float64
	checkPaid  float64
	drawer     float64

	resultCode  int
	resultDescr string
	failures    map[string]failure

	// pending properties
	name         string
	price        float64
	quantity     float64
	sum          float64
	caption      string
	pendCheck    int
	pendMode     int
	pendPassword string
	reportType   int
	date         time.Time
	timeOfDay    time.Time
	clock        time.Time
	fpNumber     int
	fpValue      string

	journal []string
}

// NewSimulator creates a simulator in select mode with a closed session
func NewSimulator() *Simulator {
	return &Simulator{
		settings: DefaultSimulatorSettings,
		password: "30",
		failures: make(map[string]failure),
	}
}

// FailOn makes the named operation (e.g. "Payment", "SetDeviceEnabled")
// return code until ClearFailures is called
func (s *Simulator) FailOn(op string, code int, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{code: code, description: description}
}

// ClearFailures removes all injected failures
func (s *Simulator) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Journal returns the lines printed so far
func (s *Simulator) Journal() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.journal...)
}

// Enabled reports whether the device is currently enabled
func (s *Simulator) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SessionOpened reports whether the trading session is open
func (s *Simulator) SessionOpened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Drawer returns the cash drawer balance
func (s *Simulator) Drawer() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawer
}

// Clock returns the last date and time written to the device
func (s *Simulator) Clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

func (s *Simulator) result(code int) int {
	s.resultCode = code
	s.resultDescr = simErrors[code]
	return code
}

// begin runs the common preamble of every call: injected failures first,
// then the enabled check for device commands.
func (s *Simulator) begin(op string, needEnabled bool) (int, bool) {
	if f, ok := s.failures[op]; ok {
		s.resultCode = f.code
		s.resultDescr = f.description
		return f.code, false
	}
	if needEnabled && !s.enabled {
		return s.result(ErrCodeNotEnabled), false
	}
	return ResultOK, true
}

// set is the shared body of plain property setters
func (s *Simulator) set(op string, apply func()) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code, ok := s.begin(op, false); !ok {
		return code
	}
	apply()
	return s.result(ResultOK)
}

// command is the shared body of device commands
func (s *Simulator) command(op string, run func() int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code, ok := s.begin(op, true); !ok {
		return code
	}
	return s.result(run())
}

func (s *Simulator) Create() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.failures["Create"]; ok {
		return fmt.Errorf("create: %s", f.description)
	}
	return nil
}

func (s *Simulator) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.failures["Destroy"]; ok {
		return fmt.Errorf("destroy: %s", f.description)
	}
	s.enabled = false
	return nil
}

func (s *Simulator) SetDeviceSettings(settings string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code, ok := s.begin("SetDeviceSettings", false); !ok {
		return code
	}
	if !gjson.Valid(settings) || !gjson.Parse(settings).IsObject() {
		return s.result(ErrCodeSettings)
	}
	if pwd := gjson.Get(settings, "UserPassword"); pwd.Exists() {
		s.password = pwd.String()
	}
	s.settings = settings
	return s.result(ResultOK)
}

func (s *Simulator) DeviceSettings() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Simulator) SetDeviceEnabled(enabled bool) int {
	return s.set("SetDeviceEnabled", func() { s.enabled = enabled })
}

func (s *Simulator) SetName(name string) int { return s.set("SetName", func() { s.name = name }) }
func (s *Simulator) SetPrice(price float64) int {
	return s.set("SetPrice", func() { s.price = price })
}
func (s *Simulator) SetQuantity(quantity float64) int {
	return s.set("SetQuantity", func() { s.quantity = quantity })
}
func (s *Simulator) SetTaxNumber(int) int { return s.set("SetTaxNumber", func() {}) }
func (s *Simulator) SetSum(sum float64) int { return s.set("SetSum", func() { s.sum = sum }) }
func (s *Simulator) SetTypeClose(int) int { return s.set("SetTypeClose", func() {}) }
func (s *Simulator) SetCaption(caption string) int {
	return s.set("SetCaption", func() { s.caption = caption })
}
func (s *Simulator) SetTextWrap(int) int { return s.set("SetTextWrap", func() {}) }
func (s *Simulator) SetAlignment(int) int { return s.set("SetAlignment", func() {}) }
func (s *Simulator) SetFontBold(bool) int { return s.set("SetFontBold", func() {}) }
func (s *Simulator) SetFontItalic(bool) int { return s.set("SetFontItalic", func() {}) }
func (s *Simulator) SetCheckType(t int) int { return s.set("SetCheckType", func() { s.pendCheck = t }) }
func (s *Simulator) SetMode(mode int) int { return s.set("SetMode", func() { s.pendMode = mode }) }
func (s *Simulator) SetReportType(t int) int { return s.set("SetReportType", func() { s.reportType = t }) }
func (s *Simulator) SetUserPassword(password string) int {
	return s.set("SetUserPassword", func() { s.pendPassword = password })
}
func (s *Simulator) SetDate(date time.Time) int {
	return s.set("SetDate", func() { s.date = date })
}
func (s *Simulator) SetTime(t time.Time) int {
	return s.set("SetTime", func() { s.timeOfDay = t })
}
func (s *Simulator) SetFiscalPropertyNumber(n int) int {
	return s.set("SetFiscalPropertyNumber", func() { s.fpNumber = n })
}
func (s *Simulator) SetFiscalPropertyType(int) int {
	return s.set("SetFiscalPropertyType", func() {})
}
func (s *Simulator) SetFiscalPropertyValue(v string) int {
	return s.set("SetFiscalPropertyValue", func() { s.fpValue = v })
}

func (s *Simulator) ResultCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultCode
}

func (s *Simulator) ResultDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultDescr
}

func (s *Simulator) CheckState() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkState
}

func (s *Simulator) Mode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Simulator) UserPassword() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password
}

// register adds the pending item to the open check, opening one of
// checkType when none is open
func (s *Simulator) register(checkType int) int {
	if s.mode != ModeRegistration {
		return ErrCodeWrongMode
	}
	if !s.session {
		return ErrCodeSessionClosed
	}
	if s.price <= 0 || s.quantity <= 0 || s.name == "" {
		return ErrCodeInvalidParam
	}
	if s.checkState == CheckStateClosed {
		s.openCheck(checkType)
	} else if s.checkType != checkType {
		return ErrCodeWrongMode
	}
	s.checkTotal += s.price * s.quantity
	s.journal = append(s.journal, fmt.Sprintf("%s %.3f x %.2f", s.name, s.quantity, s.price))
	return ResultOK
}

func (s *Simulator) openCheck(checkType int) {
	s.checkState = CheckStateOpened
	s.checkType = checkType
	s.checkTotal = 0
	s.checkPaid = 0
}

func (s *Simulator) Registration() int {
	return s.command("Registration", func() int { return s.register(CheckTypeSell) })
}

func (s *Simulator) Return() int {
	return s.command("Return", func() int { return s.register(CheckTypeReturn) })
}

func (s *Simulator) OpenCheck() int {
	return s.command("OpenCheck", func() int {
		switch {
		case s.mode != ModeRegistration:
			return ErrCodeWrongMode
		case !s.session:
			return ErrCodeSessionClosed
		case s.checkState != CheckStateClosed:
			return ErrCodeCheckOpened
		case s.pendCheck != CheckTypeSell && s.pendCheck != CheckTypeReturn:
			return ErrCodeInvalidParam
		}
		s.openCheck(s.pendCheck)
		return ResultOK
	})
}

func (s *Simulator) CloseCheck() int {
	return s.command("CloseCheck", func() int {
		if s.checkState != CheckStateOpened {
			return ErrCodeCheckClosed
		}
		if s.checkPaid < s.checkTotal {
			return ErrCodeNotEnoughFunds
		}
		if s.checkType == CheckTypeSell {
			s.drawer += s.checkTotal
		} else {
			s.drawer -= s.checkTotal
		}
		s.checkState = CheckStateClosed
		s.journal = append(s.journal, fmt.Sprintf("TOTAL %.2f", s.checkTotal))
		return ResultOK
	})
}

func (s *Simulator) CancelCheck() int {
	return s.command("CancelCheck", func() int {
		s.checkState = CheckStateClosed
		s.checkTotal = 0
		s.checkPaid = 0
		return ResultOK
	})
}

func (s *Simulator) Payment() int {
	return s.command("Payment", func() int {
		if s.checkState != CheckStateOpened {
			return ErrCodeCheckClosed
		}
		if s.sum <= 0 {
			return ErrCodeInvalidParam
		}
		s.checkPaid += s.sum
		return ResultOK
	})
}

func (s *Simulator) cash(sign float64) int {
	switch {
	case s.mode != ModeRegistration:
		return ErrCodeWrongMode
	case !s.session:
		return ErrCodeSessionClosed
	case s.checkState != CheckStateClosed:
		return ErrCodeCheckOpened
	case s.sum <= 0:
		return ErrCodeInvalidParam
	case sign < 0 && s.drawer < s.sum:
		return ErrCodeNotEnoughFunds
	}
	s.drawer += sign * s.sum
	return ResultOK
}

func (s *Simulator) CashIncome() int {
	return s.command("CashIncome", func() int { return s.cash(1) })
}

func (s *Simulator) CashOutcome() int {
	return s.command("CashOutcome", func() int { return s.cash(-1) })
}

func (s *Simulator) WriteFiscalProperty() int {
	return s.command("WriteFiscalProperty", func() int {
		if s.fpNumber <= 0 {
			return ErrCodeInvalidParam
		}
		s.journal = append(s.journal, fmt.Sprintf("[%d] %s", s.fpNumber, s.fpValue))
		return ResultOK
	})
}

// OpenSession is idempotent: an already open session is not an error
func (s *Simulator) OpenSession() int {
	return s.command("OpenSession", func() int {
		if s.mode != ModeRegistration {
			return ErrCodeWrongMode
		}
		s.session = true
		return ResultOK
	})
}

func (s *Simulator) ApplyMode() int {
	return s.command("ApplyMode", func() int {
		if s.pendPassword != s.password {
			return ErrCodeWrongPassword
		}
		if s.pendMode < ModeSelect || s.pendMode > ModeReportClear {
			return ErrCodeInvalidParam
		}
		s.mode = s.pendMode
		return ResultOK
	})
}

func (s *Simulator) Report() int {
	return s.command("Report", func() int {
		switch s.reportType {
		case ReportZ:
			if s.mode != ModeReportClear {
				return ErrCodeWrongMode
			}
			s.session = false
		case ReportX, ReportDepartments, ReportCashiers, ReportHours:
			if s.mode != ModeReportNoClear {
				return ErrCodeWrongMode
			}
		default:
			return ErrCodeInvalidParam
		}
		s.journal = append(s.journal, fmt.Sprintf("REPORT %d", s.reportType))
		return ResultOK
	})
}

func (s *Simulator) PartialCut() int { return s.command("PartialCut", func() int { return ResultOK }) }
func (s *Simulator) FullCut() int { return s.command("FullCut", func() int { return ResultOK }) }

func (s *Simulator) ApplyDate() int {
	return s.command("ApplyDate", func() int {
		y, m, d := s.date.Date()
		s.clock = time.Date(y, m, d, s.clock.Hour(), s.clock.Minute(), s.clock.Second(), 0, time.Local)
		return ResultOK
	})
}

func (s *Simulator) ApplyTime() int {
	return s.command("ApplyTime", func() int {
		y, m, d := s.clock.Date()
		t := s.timeOfDay
		s.clock = time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.Local)
		return ResultOK
	})
}

func (s *Simulator) PrintString() int {
	return s.command("PrintString", func() int {
		s.journal = append(s.journal, s.caption)
		return ResultOK
	})
}

func (s *Simulator) PrintHeader() int {
	return s.command("PrintHeader", func() int {
		s.journal = append(s.journal, "HEADER")
		return ResultOK
	})
}

func (s *Simulator) PrintFooter() int {
	return s.command("PrintFooter", func() int {
		s.journal = append(s.journal, "FOOTER")
		return ResultOK
	})
}

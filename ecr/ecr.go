// Package ecr drives a fiscal cash register through batches of abstract
// equipment tasks.
//
// An ECR executes one batch at a time: it enables the device, interprets
// each task in order, stops at the first failing task and reports a single
// EquipmentResponse. The driver and its session state are shared between
// batches, so an ECR serialises calls to Execute.
package ecr

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nixxel-company-limited/ecr-task-server/device"
	"github.com/nixxel-company-limited/ecr-task-server/equipment"
	"github.com/nixxel-company-limited/ecr-task-server/metrics"
)

// ECR adapts equipment tasks to a fiscal register driver
type ECR struct {
	driver   device.Driver
	logger   *zap.Logger
	messages Messages
	now      func() time.Time
	recorder metrics.Recorder

	mu       sync.Mutex
	finished bool
}

// Option configures an ECR
type Option func(*ECR)

// WithLogger sets the logger used for operator diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(e *ECR) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMessages overrides diagnostic templates; empty fields keep their defaults
func WithMessages(m Messages) Option {
	return func(e *ECR) { e.messages = m.withDefaults() }
}

// WithClock sets the wall clock used by SYNC_TIME
func WithClock(now func() time.Time) Option {
	return func(e *ECR) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r metrics.Recorder) Option {
	return func(e *ECR) {
		if r != nil {
			e.recorder = r
		}
	}
}

// New creates the driver handle and applies settings to it. Empty settings
// leave the driver defaults in place. A rejected settings string is fatal:
// the handle is destroyed and a *ConfigError is returned.
func New(driver device.Driver, settings string, opts ...Option) (*ECR, error) {
	if driver == nil {
		return nil, errors.New("ecr: nil driver")
	}

	e := &ECR{
		driver:   driver,
		logger:   zap.NewNop(),
		messages: DefaultMessages(),
		now:      time.Now,
		recorder: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := driver.Create(); err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}

	if settings != "" && driver.SetDeviceSettings(settings) != device.ResultOK {
		err := &ConfigError{Message: fmt.Sprintf("%s : %s. %s",
			e.messages.InitFailure, e.messages.IncorrectSettings, e.deviceInfo())}
		if derr := driver.Destroy(); derr != nil {
			e.logger.Error("failed to destroy driver", zap.Error(derr))
		}
		return nil, err
	}

	return e, nil
}

// DefaultSettings returns the driver's current settings string
func (e *ECR) DefaultSettings() string {
	return e.driver.DeviceSettings()
}

// Finish releases the driver handle. Errors are logged, not returned.
func (e *ECR) Finish() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return
	}
	e.finished = true

	if err := e.driver.Destroy(); err != nil {
		e.logger.Error("failed to destroy driver", zap.Error(err))
	}
}

// Submit runs Execute on its own goroutine. The returned channel receives
// exactly one response and is then closed.
func (e *ECR) Submit(tasks []equipment.Task) <-chan equipment.EquipmentResponse {
	out := make(chan equipment.EquipmentResponse, 1)
	go func() {
		defer close(out)
		out <- e.Execute(tasks)
	}()
	return out
}

// Execute runs tasks in order against the device and stops at the first
// failure. It blocks until the batch is done; concurrent calls are serialised.
func (e *ECR) Execute(tasks []equipment.Task) equipment.EquipmentResponse {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	resp := e.execute(tasks)
	e.recorder.Execution(resp.ResultCode, time.Since(start))
	return resp
}

func (e *ECR) execute(tasks []equipment.Task) equipment.EquipmentResponse {
	if e.finished {
		return failure("driver is released")
	}

	if err := check(e.driver.SetDeviceEnabled(true), "enable device"); err != nil {
		e.logger.Error("failed to enable device", zap.Error(err))
		return failure(e.info(err))
	}

	for i, task := range tasks {
		if err := e.executeTask(task); err != nil {
			info := e.info(err)
			e.logger.Error("task failed",
				zap.Int("index", i),
				zap.Stringer("type", task.Type),
				zap.String("kind", Kind(err)),
				zap.String("info", info),
				zap.Error(err),
			)
			e.recorder.TaskFailure(task.Type, Kind(err))
			if skipped := len(tasks) - i - 1; skipped > 0 {
				e.logger.Debug("remaining tasks skipped", zap.Int("count", skipped))
			}
			return failure(info)
		}
	}

	if err := check(e.driver.SetDeviceEnabled(false), "disable device"); err != nil {
		e.logger.Warn("failed to disable device", zap.Error(err))
	}

	resp := equipment.EquipmentResponse{ResultCode: equipment.Success}
	if e.driver.ResultCode() != device.ResultOK {
		resp.ResultInfo = e.deviceInfo()
	}
	return resp
}

func failure(info string) equipment.EquipmentResponse {
	return equipment.EquipmentResponse{
		ResultCode: equipment.HandlingError,
		ResultInfo: info,
	}
}

// info builds the diagnostic text for err. A validation message wins over
// whatever the device last reported.
func (e *ECR) info(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return e.deviceInfo()
}

func (e *ECR) deviceInfo() string {
	return fmt.Sprintf(e.messages.ErrorCode, e.driver.ResultCode(), e.driver.ResultDescription())
}

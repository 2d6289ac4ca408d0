package ecr

import (
	"go.uber.org/zap"

	"github.com/nixxel-company-limited/ecr-task-server/device"
)

// prepareRegistration leaves the device in registration mode with an open
// session and no open check
func (e *ECR) prepareRegistration() error {
	e.dropCheck()
	if err := e.setMode(device.ModeRegistration); err != nil {
		return err
	}
	e.openSession()
	return nil
}

// dropCheck cancels whatever check may be open; there may be none
func (e *ECR) dropCheck() {
	if err := e.cancelCheck(); err != nil {
		e.logger.Debug("cancel check ignored", zap.Error(err))
	}
}

// openSession always issues the open command. The driver misreports
// session status, and opening an already open session is harmless.
func (e *ECR) openSession() {
	if err := check(e.driver.OpenSession(), "open session"); err != nil {
		e.logger.Debug("open session ignored", zap.Error(err))
	}
}

// setMode switches the device to mode unless it is already there. The
// device wants its own user password written back before a mode change.
func (e *ECR) setMode(mode int) error {
	if e.driver.Mode() == mode {
		return nil
	}
	e.driver.SetUserPassword(e.driver.UserPassword())
	e.driver.SetMode(mode)
	return check(e.driver.ApplyMode(), "set mode")
}

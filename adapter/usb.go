// Package adapter discovers fiscal registers attached over USB and derives
// driver settings strings for them.
package adapter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/gousb"
)

// Interface class codes
// Reference: http://www.usb.org/developers/defined_class
const (
	IfaceClassCDC     = 0x02
	IfaceClassPrinter = 0x07
)

// VendorATOL is the USB vendor id of ATOL registers, which enumerate as
// CDC serial devices rather than printer class
const VendorATOL gousb.ID = 0x2912

// Printer describes a discovered USB register
type Printer struct {
	Vendor       gousb.ID
	Product      gousb.ID
	Bus          int
	Address      int
	Manufacturer string
	Model        string
	Serial       string
}

func (p Printer) String() string {
	s := fmt.Sprintf("bus %d addr %d %s:%s", p.Bus, p.Address, p.Vendor, p.Product)
	if p.Manufacturer != "" || p.Model != "" {
		s += fmt.Sprintf(" %s %s", p.Manufacturer, p.Model)
	}
	if p.Serial != "" {
		s += " serial " + p.Serial
	}
	return s
}

type usbSettings struct {
	Model        string `json:"Model"`
	Port         string `json:"Port"`
	Vid          string `json:"Vid"`
	Pid          string `json:"Pid"`
	Serial       string `json:"Serial,omitempty"`
	UserPassword string `json:"UserPassword,omitempty"`
}

// Settings returns a driver settings string that binds the driver to p
func (p Printer) Settings(password string) (string, error) {
	b, err := json.Marshal(usbSettings{
		Model:        "auto",
		Port:         "USB",
		Vid:          p.Vendor.String(),
		Pid:          p.Product.String(),
		Serial:       p.Serial,
		UserPassword: password,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsPrinterDesc reports whether a device descriptor looks like a register:
// an ATOL device or anything exposing a printer class interface
func IsPrinterDesc(desc *gousb.DeviceDesc) bool {
	if desc == nil {
		return false
	}
	if desc.Vendor == VendorATOL {
		return true
	}

	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class == IfaceClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

// IsPrinter checks if an opened device is a register
func IsPrinter(dev *gousb.Device) bool {
	if dev == nil {
		return false
	}
	return IsPrinterDesc(dev.Desc)
}

// FindPrinters opens and returns all USB registers. The caller closes them.
func FindPrinters(ctx *gousb.Context) ([]*gousb.Device, error) {
	devices, err := ctx.OpenDevices(IsPrinterDesc)
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("open devices: %w", err)
	}
	return devices, nil
}

// ListPrinters enumerates attached registers and closes them again
func ListPrinters() ([]Printer, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devices, err := FindPrinters(ctx)
	if err != nil {
		return nil, err
	}

	printers := make([]Printer, 0, len(devices))
	for _, dev := range devices {
		printers = append(printers, describe(dev))
		dev.Close()
	}
	return printers, nil
}

func describe(dev *gousb.Device) Printer {
	p := Printer{
		Vendor:  dev.Desc.Vendor,
		Product: dev.Desc.Product,
		Bus:     dev.Desc.Bus,
		Address: dev.Desc.Address,
	}
	// string descriptors are optional; missing ones stay empty
	p.Manufacturer, _ = dev.Manufacturer()
	p.Model, _ = dev.Product()
	p.Serial, _ = dev.SerialNumber()
	return p
}

// GetDeviceBySerial opens a register by serial number
func GetDeviceBySerial(ctx *gousb.Context, serial string) (*gousb.Device, error) {
	devices, err := FindPrinters(ctx)
	if err != nil {
		return nil, err
	}

	var found *gousb.Device
	for _, dev := range devices {
		if found == nil {
			if s, err := dev.SerialNumber(); err == nil && s == serial {
				found = dev
				continue
			}
		}
		dev.Close()
	}

	if found == nil {
		return nil, errors.New("device with serial number not found")
	}
	return found, nil
}

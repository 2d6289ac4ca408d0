package equipment

import "fmt"

// ResponseCode is the overall outcome of a task batch
type ResponseCode int

const (
	Success ResponseCode = iota
	HandlingError
)

func (c ResponseCode) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case HandlingError:
		return "HANDLING_ERROR"
	default:
		return fmt.Sprintf("ResponseCode(%d)", int(c))
	}
}

func (c ResponseCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ResponseCode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "SUCCESS":
		*c = Success
	case "HANDLING_ERROR":
		*c = HandlingError
	default:
		return fmt.Errorf("unknown response code %q", string(text))
	}
	return nil
}

// EquipmentResponse is produced once per executed task batch
type EquipmentResponse struct {
	ResultCode ResponseCode `json:"resultCode"`
	ResultInfo string       `json:"resultInfo"`
}

// Succeeded reports whether the batch completed without error
func (r EquipmentResponse) Succeeded() bool {
	return r.ResultCode == Success
}

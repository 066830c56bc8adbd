package lights

import (
	"encoding/json"
	"fmt"
)

// Wire format of the Govee LAN API: a JSON envelope over UDP, one command
// per datagram. Responses reuse the same envelope with the request's cmd
// echoed back; there is no correlation identifier.

const (
	goveeCmdScan       = "scan"
	goveeCmdDevStatus  = "devStatus"
	goveeCmdTurn       = "turn"
	goveeCmdBrightness = "brightness"
	goveeCmdColor      = "colorwc"
)

type goveeRequest struct {
	Msg goveeCommand `json:"msg"`
}

type goveeCommand struct {
	Cmd  string `json:"cmd"`
	Data any    `json:"data"`
}

type goveeResponse struct {
	Msg struct {
		Cmd  string          `json:"cmd"`
		Data json.RawMessage `json:"data"`
	} `json:"msg"`
}

type goveeColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type goveeTurnPayload struct {
	Value intBool `json:"value"`
}

type goveeBrightnessPayload struct {
	Value uint8 `json:"value"`
}

type goveeColorPayload struct {
	Color goveeColor `json:"color"`
}

type goveeScanPayload struct {
	Topic string `json:"topic"`
}

type goveeDevStatus struct {
	OnOff      intBool    `json:"onOff"`
	Brightness uint8      `json:"brightness"`
	Color      goveeColor `json:"color"`
	// ColorTemInKelvin is reported by the device but not part of the
	// Light capability set; it is decoded so status payloads round-trip.
	ColorTemInKelvin int `json:"colorTemInKelvin"`
}

// goveeLanDevice is a device's answer to the multicast scan probe.
type goveeLanDevice struct {
	IP              string `json:"ip"`
	Device          string `json:"device"`
	SKU             string `json:"sku"`
	BLEVersionHard  string `json:"bleVersionHard"`
	BLEVersionSoft  string `json:"bleVersionSoft"`
	WifiVersionHard string `json:"wifiVersionHard"`
	WifiVersionSoft string `json:"wifiVersionSoft"`
}

// intBool is a bool that crosses the wire as the integer 1 or 0. The
// devices reject JSON true/false, so anything but those two integers is a
// protocol error.
type intBool bool

func (b intBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (b *intBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "1":
		*b = true
	case "0":
		*b = false
	default:
		return fmt.Errorf("on/off flag must be 0 or 1, got %s", data)
	}
	return nil
}

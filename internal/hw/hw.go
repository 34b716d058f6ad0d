// Package hw defines the contracts for the hardware families on the sensing
// platform. Each device family gets one small interface; concrete variants
// (which chip actually sits on the board) are chosen at configuration time.
//
// These are flat accessor contracts. None of them carry protocol state; the
// GNSS receiver is the only device with a real command/response engine, and
// that lives in internal/ubx and internal/gnss.
package hw

// Axis indexes for accelerometer reads.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// Accelerometer covers MXC6655/BMA456-class parts.
type Accelerometer interface {
	Begin() error
	// Accel returns acceleration for one axis in g.
	Accel(axis int) (float64, error)
	// UpdateAll refreshes all three axes in one bus transaction.
	UpdateAll() error
	// Temp returns the die temperature in degrees Celsius.
	Temp() (float64, error)
}

// Light channels for AmbientLight.Value.
const (
	ChannelClear = iota
	ChannelRed
	ChannelGreen
	ChannelBlue
	ChannelIR
)

// AmbientLight covers VEML3328-class color/ambient sensors.
type AmbientLight interface {
	Begin() error
	Value(channel int) (float64, error)
	Lux() (float64, error)
	// AutoRange picks gain/integration so the current light level doesn't
	// saturate.
	AutoRange() error
}

// CurrentSense covers PAC1934-class multi-channel bus monitors.
type CurrentSense interface {
	Begin() error
	EnableChannel(unit int, on bool) error
	SetFrequency(hz int) error
	BusVoltage(unit int, avg bool) (float64, error)
	SenseVoltage(unit int, avg bool) (float64, error)
	Current(unit int, avg bool) (float64, error)
	PowerAvg(unit int) (float64, error)
}

// Measurement is one humidity/temperature sample.
type Measurement struct {
	RelativeHumidity float64 // percent
	TemperatureC     float64
}

// HTPrecision selects a measurement precision/duration trade-off.
type HTPrecision int

const (
	HTPrecisionHigh HTPrecision = iota
	HTPrecisionMed
	HTPrecisionLow
)

// HumidityTemperature covers SHT4x-class sensors.
type HumidityTemperature interface {
	Begin() error
	SetPrecision(p HTPrecision)
	Precision() HTPrecision
	Measure() (Measurement, error)
}

// PinMode values for the IO expander.
const (
	PinInput = iota
	PinOutput
)

// IOExpander covers PCAL9535A-class 16-bit expanders. Pin numbering is
// 0..15 across both ports.
type IOExpander interface {
	Begin() error
	PinMode(pin int, mode int) error
	DigitalWrite(pin int, high bool) error
	DigitalRead(pin int) (bool, error)
	SetInterrupt(pin int, enable bool) error
	// ReadBus returns all 16 input bits in one transaction.
	ReadBus() (uint16, error)
}

// LedOutputMode and LedGroupMode mirror the PCA9634 driver options.
type LedOutputMode int

const (
	LedOpenDrain LedOutputMode = iota
	LedTotemPole
)

type LedGroupMode int

const (
	LedGroupDim LedGroupMode = iota
	LedGroupBlink
)

// Led covers PCA9634-class LED drivers.
type Led interface {
	Begin() error
	Sleep(on bool) error
	SetOutputMode(m LedOutputMode) error
	SetGroupMode(m LedGroupMode) error
	SetGroupBlinkPeriod(ms int) error
	SetGroupOnTime(ms int) error
	// SetBrightness sets one channel, 0.0..1.0.
	SetBrightness(pos int, brightness float64) error
}

// Timestamp is a broken-down RTC time.
type Timestamp struct {
	Year   int // e.g. 2026
	Month  int // 1-12
	Day    int // 1-31
	Hour   int // 0-23
	Minute int // 0-59
	Second int // 0-59
}

// RTC covers MCP79412-class real-time clocks.
type RTC interface {
	Begin() error
	Time() (Timestamp, error)
	SetTime(ts Timestamp) error
	SetAlarm(secondsAhead int) error
	ClearAlarm() error
}

// SDI12Talon is the SDI-12 bus controller contract consumed by SDI-12
// sensors. Command strings and CRC checking follow the SDI-12 spec; the
// talon owns addressing and port power.
type SDI12Talon interface {
	Address() int
	SendCommand(command string) (string, error)
	Command(command string, address int) (string, error)
	ContinuousMeasurementCRC(measure, address int) (string, error)
	TestCRC(message string) bool

	EnableData(port int, on bool) error
	EnablePower(port int, on bool) error
	DisableDataAll() error
	NumPorts() int

	IsPresent() bool
	Restart() error
}

package ubx

// Status is the terminal outcome of a single SendCommand invocation. Exactly
// one Status is produced per command; they do not combine.
type Status int

const (
	StatusSuccess Status = iota
	StatusFail
	StatusCrcFail
	StatusTimeout
	// StatusCommandNack means the receiver rejected the command: unknown,
	// invalid, or the module was too busy to act on it.
	StatusCommandNack
	StatusOutOfRange
	StatusInvalidArg
	StatusInvalidOperation
	StatusMemErr
	StatusHwErr
	// StatusDataSent indicates a 'set' was acknowledged.
	StatusDataSent
	// StatusDataReceived indicates a 'get' (poll) produced a payload.
	StatusDataReceived
	StatusI2CCommFailure
	// StatusDataOverwritten: the frame checksummed clean but its payload was
	// larger than the receive buffer, so the stored bytes are truncated.
	StatusDataOverwritten
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	case StatusCrcFail:
		return "crc fail"
	case StatusTimeout:
		return "timeout"
	case StatusCommandNack:
		return "command nack"
	case StatusOutOfRange:
		return "out of range"
	case StatusInvalidArg:
		return "invalid arg"
	case StatusInvalidOperation:
		return "invalid operation"
	case StatusMemErr:
		return "mem err"
	case StatusHwErr:
		return "hw err"
	case StatusDataSent:
		return "data sent"
	case StatusDataReceived:
		return "data received"
	case StatusI2CCommFailure:
		return "i2c comm failure"
	case StatusDataOverwritten:
		return "data overwritten"
	default:
		return "unknown"
	}
}

// OK reports whether s is one of the outcomes that mean the command achieved
// its purpose.
func (s Status) OK() bool {
	return s == StatusSuccess || s == StatusDataSent || s == StatusDataReceived
}

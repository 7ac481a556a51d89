package lifu

// Команды протокола.
const (
	cmdPing        = "PING"
	cmdEcho        = "ECHO"
	cmdVersion     = "VERSION?"
	cmdHardwareID  = "HWID?"
	cmdTemperature = "TEMP?"
	cmdRGBSet      = "RGB"
	cmdRGBGet      = "RGB?"
	cmd12V         = "12V"
	cmdHV          = "HV"
	cmdPower       = "POWER?"
	cmdTriggerGet  = "TRIGGER?"
	cmdTriggerSet  = "TRIGGER"
	cmdSolution    = "SOLUTION"
	cmdStart       = "START"
	cmdStop        = "STOP"
	cmdReset       = "RESET"
)

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

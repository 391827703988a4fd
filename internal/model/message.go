package model

// Commands sent to the evaluation stream.
const (
	CommandAuth  = "auth"
	CommandStop  = "stop"
	CommandReset = "reset"
	CommandEval  = "eval"
)

// Commands received from the evaluation stream.
const (
	CommandReady                = "ready"
	CommandPackageInstallStart  = "event:packageInstallStart"
	CommandPackageInstallOutput = "event:packageInstallOutput"
	CommandPackageInstallEnd    = "event:packageInstallEnd"
	CommandOutput               = "output"
	CommandInterpOutput         = "event:interpOutput"
	CommandPortOpen             = "event:portOpen"
)

// Message is the envelope of every frame exchanged on the evaluation stream.
type Message struct {
	Command string
	Data    string
	// Error is set by the server when something went wrong, it's never sent by us.
	Error string
}

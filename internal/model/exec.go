package model

// ExecResult contains the result of a remote execution attempt.
type ExecResult struct {
	// PortOpened is true when the remote program opened a network port, this means
	// the workspace has a web endpoint.
	PortOpened bool
	// IdleTimeout is true when the run finished because no terminal event arrived
	// before the idle watchdog fired.
	IdleTimeout bool
}

// Report is the final outcome of a run.
type Report struct {
	Workspace Workspace
	// Executed is false when there was no entry file and only the upload happened.
	Executed bool
	// Result is set only when Executed is true.
	Result *ExecResult
}

// WebURL returns the web facing URL of the run, empty if the program didn't open a port.
func (r Report) WebURL() string {
	if r.Result == nil || !r.Result.PortOpened {
		return ""
	}
	return r.Workspace.WebURL()
}

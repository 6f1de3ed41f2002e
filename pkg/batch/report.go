package batch

// JobReport is the terminal, immutable summary of one job run. Exactly one
// JobReport is produced per run, and the same instance is passed to every
// afterJob listener.
type JobReport struct {
	JobName          string
	Parameters       JobParameters
	Status           JobStatus
	Metrics          Snapshot
	LastError        error
	SystemProperties map[string]string
}

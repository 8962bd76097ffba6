package interp

// Result is the outcome of a single command invocation.
type Result int

const (
	Success Result = iota
	Failure
)

func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

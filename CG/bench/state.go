package bench

// State is a phase of one benchmark run.
type State int

const (
	StateInit State = iota
	StateWarmupSolve
	StateMainLoop
	StateVerify
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateWarmupSolve:
		return "warmup"
	case StateMainLoop:
		return "main_loop"
	case StateVerify:
		return "verify"
	case StateDone:
		return "done"
	}
	return "unknown"
}

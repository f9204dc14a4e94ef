package procevents

// Kind tags which PROC_EVENT_* variant an Event carries (spec.md §3
// tagged-variant ProcessEvent).
type Kind int

const (
	EventNone Kind = iota
	EventFork
	EventExec
	EventUID
	EventGID
	EventExit
)

func (k Kind) String() string {
	switch k {
	case EventFork:
		return "fork"
	case EventExec:
		return "exec"
	case EventUID:
		return "uid"
	case EventGID:
		return "gid"
	case EventExit:
		return "exit"
	default:
		return "none"
	}
}

// Event is a single decoded process-event-connector notification. Only the
// fields relevant to Kind are populated; the dispatcher only acts on
// EventExec (spec.md §4.3) and EventExit.
type Event struct {
	Kind Kind

	// exec, uid, gid, exit share this shape.
	PID  uint32
	TGID uint32

	// fork.
	ParentPID  uint32
	ParentTGID uint32
	ChildPID   uint32
	ChildTGID  uint32

	// uid/gid.
	RID uint32
	EID uint32

	// exit.
	ExitCode   uint32
	ExitSignal uint32
}

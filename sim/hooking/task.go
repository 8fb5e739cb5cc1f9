// Package hooking carries the structured task-lifecycle tracing vocabulary
// a component uses to report "a request entered my buffer and eventually
// left it" independently of the low-level per-event sim.Hook* hooks: a
// memory request traced end-to-end from Send through completion is a
// single task, not a sequence of unrelated events.
package hooking

// A list of hook positions a task-lifecycle hook can fire at.
var (
	HookPosTaskStart = &HookPos{Name: "HookPosTaskStart"}
	HookPosTaskTag   = &HookPos{Name: "HookPosTaskTag"}
	HookPosTaskStep  = &HookPos{Name: "HookPosTaskStep"}
	HookPosTaskEnd   = &HookPos{Name: "HookPosTaskEnd"}
)

// TaskStart is passed to a hook when a task starts — a memory request
// arriving at the controller's top port, before it has been admitted to
// any buffer.
type TaskStart struct {
	ID       string
	ParentID string
	Kind     string
	What     string
	Where    string
}

// TaskTag attaches extra detail to an already-started task — e.g. which
// row-hit classification a request ultimately received.
type TaskTag struct {
	TaskID string
	What   string
	Detail string
}

// TaskStep marks an intermediate milestone within a task — a request
// being selected by the scheduler, or a command it depends on issuing —
// without ending the task itself.
type TaskStep struct {
	TaskID string
	StepID string
	Kind   string
	What   string
	Detail string
}

// TaskEnd is passed to a hook when a task ends — a read's data has been
// returned to its caller, or a write/maintenance request has completed.
type TaskEnd struct {
	ID string
}

type step struct {
	ID     string  `json:"id"`
	Time   float64 `json:"time"`
	Kind   string  `json:"kind"`
	What   string  `json:"what"`
	Detail string  `json:"detail"`
}

type tag struct {
	What   string `json:"what"`
	Detail string `json:"detail"`
}

type task struct {
	ID        string  `json:"id"`
	ParentID  string  `json:"parent_id"`
	Kind      string  `json:"kind"`
	What      string  `json:"what"`
	Where     string  `json:"where"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Steps     []step  `json:"steps"`
	Tags      []tag   `json:"tags"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t TaskStart) bool

// A TimeTeller can tell the current time. This interface is recreated here
// to break a circular dependency between the timing package and the
// hooking package.
type TimeTeller interface {
	Now() float64
}

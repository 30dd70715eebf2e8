package model

type TaskID string

type TaskKind string

const (
	TaskOnboarding TaskKind = "onboarding"
	TaskWeekly     TaskKind = "weekly"
	TaskMilestone  TaskKind = "milestone"
	TaskProgram    TaskKind = "program"
	TaskPrestart   TaskKind = "prestart"
)

// Task is a generated touch-point for one (client, date) pair. Tasks are
// recomputed on every query and never persisted; only the done flag in the
// completion ledger is stored, keyed by the task ID.
type Task struct {
	ID    TaskID   `json:"id"`
	Title string   `json:"title"`
	Kind  TaskKind `json:"kind"`
}

// RuleTaskID namespaces a generated task by its source rule so ledger
// entries survive rule title edits but die with rule deletion.
func RuleTaskID(id RuleID) TaskID {
	return TaskID("rule:" + string(id))
}

// Fixed IDs for the synthetic program reminders. They come from no rule,
// so they are literals rather than rule-namespaced.
const (
	TaskIDProgramWrapup TaskID = "program_wrapup"
	TaskIDProgramFinal  TaskID = "program_final"
)

// PrestartBucket is the synthetic ledger date under which pre-start
// checklist completions are tracked. The checklist is independent of the
// calendar, so its entries live under this bucket instead of a real date.
const PrestartBucket = "prestart"

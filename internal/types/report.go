package types

import "time"

// StageState tracks the lifecycle of one pipeline stage.
type StageState string

const (
	StateNotStarted StageState = "not-started"
	StateRunning    StageState = "running"
	StateSuccess    StageState = "success"
	StateFailed     StageState = "failed"
	StateSkipped    StageState = "skipped"
)

// UnitError records a per-unit failure with enough identity to
// diagnose which unit failed.
type UnitError struct {
	Unit    ModuleID `json:"unit"`
	Message string   `json:"message"`
}

// DetailReport accumulates per-unit outcomes during a pipeline run.
// It is immutable once the run's report has been returned.
type DetailReport struct {
	SuccessUnits []ModuleID  `json:"success_units"`
	Errors       []UnitError `json:"errors"`
}

// Success records a unit that was processed without error.
func (r *DetailReport) Success(id ModuleID) {
	r.SuccessUnits = append(r.SuccessUnits, id)
}

// Error records a unit that failed, with a human-readable message.
func (r *DetailReport) Error(id ModuleID, message string) {
	r.Errors = append(r.Errors, UnitError{Unit: id, Message: message})
}

// HasErrors reports whether any unit failed.
func (r *DetailReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// StageReport is the outcome of one publish stage.
type StageReport struct {
	State        StageState    `json:"state"`
	Duration     time.Duration `json:"duration"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// PublishReport is the structured result of one publish run. A
// snapshot of it is pushed to the progress sink on every transition
// and the final value is returned to the caller; publish never raises
// past that boundary.
type PublishReport struct {
	RepoID  string `json:"repo_id"`
	Success bool   `json:"success"`
	Summary string `json:"summary"`

	Modules        StageReport `json:"modules"`
	ModulesTotal   int         `json:"modules_total"`
	ModulesLinked  int         `json:"modules_linked"`
	ModulesErrored int         `json:"modules_errored"`

	Metadata     StageReport `json:"metadata"`
	PublishHTTP  StageState  `json:"publish_http"`
	PublishHTTPS StageState  `json:"publish_https"`

	Details DetailReport `json:"details"`
}

// InstallReport is the structured result of one install run.
type InstallReport struct {
	Success bool         `json:"success"`
	Summary string       `json:"summary"`
	Details DetailReport `json:"details"`
}

package domain

// CheckStatus is the outcome of a single check. Checks never partially fail.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusFail CheckStatus = "fail"
)

// CheckResult is what every check returns: a pass/fail status and the
// diagnostics explaining a failure. A check never aborts the run.
type CheckResult struct {
	Status      CheckStatus `json:"status"`
	Diagnostics []string    `json:"diagnostics,omitempty"`
}

// Pass is the result of a check that found nothing wrong.
func Pass() CheckResult {
	return CheckResult{Status: StatusPass}
}

// Fail builds a failing result from the given diagnostic lines.
func Fail(diagnostics ...string) CheckResult {
	return CheckResult{Status: StatusFail, Diagnostics: diagnostics}
}

// ValidationReport is the accumulated outcome of one validation run.
// ErrorCount always equals the number of failed checks, and Diagnostics
// preserve check run order: operators read them top to bottom as a
// remediation script.
type ValidationReport struct {
	Package     string   `json:"package"`
	Triplet     string   `json:"triplet,omitempty"`
	CommitHash  string   `json:"commit_hash,omitempty"`
	RecipeFile  string   `json:"recipe_file,omitempty"`
	ChecksRun   int      `json:"checks_run"`
	ErrorCount  int      `json:"error_count"`
	Diagnostics []string `json:"diagnostics"`
}

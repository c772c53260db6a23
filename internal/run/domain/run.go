package domain

import "time"

// Status is a workflow run's execution status.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Conclusion is the final verdict of a completed run. Present iff
// Status == completed.
type Conclusion string

const (
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionCancelled Conclusion = "cancelled"
)

// Step is one step within a job.
type Step struct {
	Name       string     `json:"name"`
	Status     Status     `json:"status"`
	Conclusion Conclusion `json:"conclusion,omitempty"`
}

// Job is one job within a run, with ordered steps.
type Job struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     Status     `json:"status"`
	Conclusion Conclusion `json:"conclusion,omitempty"`
	Steps      []Step     `json:"steps"`
}

// Artifact is a file produced by a run.
type Artifact struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// WorkflowRun is one execution of a workflow. The invariant that Conclusion
// is set exactly when the run completed is enforced by the handlers that
// transition status.
type WorkflowRun struct {
	ID           string     `json:"id"`
	RepoID       string     `json:"-"`
	Number       int        `json:"number"`
	WorkflowName string     `json:"workflow_name"`
	Status       Status     `json:"status"`
	Conclusion   Conclusion `json:"conclusion,omitempty"`
	HeadSHA      string     `json:"head_sha"`
	HeadBranch   string     `json:"head_branch"`
	Event        string     `json:"event"`
	Jobs         []Job      `json:"jobs"`
	Artifacts    []Artifact `json:"artifacts"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Done reports whether the run has finished.
func (r *WorkflowRun) Done() bool { return r.Status == StatusCompleted }

// Clone returns a deep copy safe to mutate.
func (r *WorkflowRun) Clone() *WorkflowRun {
	c := *r
	c.Jobs = make([]Job, len(r.Jobs))
	for i, j := range r.Jobs {
		c.Jobs[i] = j
		c.Jobs[i].Steps = append([]Step(nil), j.Steps...)
	}
	c.Artifacts = append([]Artifact(nil), r.Artifacts...)
	return &c
}

package models

// WorkflowView is the current screen/state within the disease-detection
// feature. Exactly one is active per crop-feature session.
type WorkflowView string

const (
	ViewHistory   WorkflowView = "history"
	ViewUpload    WorkflowView = "upload"
	ViewAnalyzing WorkflowView = "analyzing"
	ViewResult    WorkflowView = "result"
)

// workflowEdges is the transition table for the disease workflow. Analyzing
// is a non-interactive transient state: it is entered only from upload and
// exits to result (success) or back to upload (failure). Selecting an
// existing detection jumps history directly to result.
var workflowEdges = map[WorkflowView][]WorkflowView{
	ViewHistory:   {ViewUpload, ViewResult},
	ViewUpload:    {ViewAnalyzing},
	ViewAnalyzing: {ViewResult, ViewUpload},
	ViewResult:    {ViewHistory},
}

// CanTransition reports whether the workflow may move from one view to
// another in a single step
func CanTransition(from, to WorkflowView) bool {
	for _, next := range workflowEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

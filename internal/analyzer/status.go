package analyzer

// Status is the triage classification of a submission.
type Status string

const (
	StatusApproveAsOptimal      Status = "approve_as_optimal"
	StatusDisapproveWithComment Status = "disapprove_with_comment"
	StatusReferToMentor         Status = "refer_to_mentor"
)

// deriveStatus applies the verdict precedence. Only str.format and f-strings
// count as optimal formatting; %-formatting alone never does.
func deriveStatus(approvable, noComments, optimalFormatting bool) Status {
	switch {
	case approvable && noComments && optimalFormatting:
		return StatusApproveAsOptimal
	case !approvable:
		return StatusDisapproveWithComment
	default:
		return StatusReferToMentor
	}
}

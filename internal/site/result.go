package site

// DeleteOutcome classifies the result of a delete operation.
type DeleteOutcome int

const (
	// Deleted means the object existed and was removed.
	Deleted DeleteOutcome = iota
	// NotFound means the object was already absent; delete operations treat
	// this as success.
	NotFound
	// HostFault means the host store's native driver failed. The operation
	// completes normally and the caller decides how to surface the detail.
	HostFault
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not found"
	case HostFault:
		return "host fault"
	default:
		return "unknown"
	}
}

// DeleteResult is returned by the delete operations. Detail is set only for
// HostFault outcomes.
type DeleteResult struct {
	Outcome DeleteOutcome
	Detail  error
}

// ProgressFunc receives a completion percentage. The controller calls it at
// most once per delete operation, always with 100.
type ProgressFunc func(percent int)

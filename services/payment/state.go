package payment

// State is a step of the payment creation workflow. Steps run strictly in
// declaration order and a failure in any of them ends the run.
type State int

const (
	StateValidating State = iota
	StateStructuralValidating
	StateCharging
	StatePersisting
	StateNotifying
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateStructuralValidating:
		return "structural_validating"
	case StateCharging:
		return "charging"
	case StatePersisting:
		return "persisting"
	case StateNotifying:
		return "notifying"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// PastPointOfNoReturn is true once the charge has been accepted by the
// gateway. Nothing after that point is undone.
func (s State) PastPointOfNoReturn() bool {
	return s > StateCharging
}

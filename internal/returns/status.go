package returns

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusReceived  Status = "received"
	StatusInspected Status = "inspected"
	StatusRefunded  Status = "refunded"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// received -> rejected is the inspection-failure path only; the reject
// endpoint itself is legal from pending.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusApproved: true, StatusRejected: true, StatusCancelled: true},
	StatusApproved:  {StatusReceived: true, StatusCancelled: true},
	StatusReceived:  {StatusInspected: true, StatusRejected: true},
	StatusInspected: {StatusRefunded: true},
	StatusRefunded:  {StatusCompleted: true},
	StatusCompleted: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func IsTerminal(s Status) bool {
	return len(validNext[s]) == 0 && s.Valid()
}

package models

// Status is the graded health classification of a namespace. The numeric
// values follow the Sensu/Nagios plugin convention carried on the wire by
// the alert transport.
type Status int

const (
	StatusOK       Status = 0
	StatusWarning  Status = 1
	StatusCritical Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Verdict is the result of evaluating one namespace: its classification,
// the availability ratio that produced it (available/expected as a
// percentage, zero when no data existed), and a human-readable summary.
type Verdict struct {
	Status  Status  `json:"status"`
	Ratio   float64 `json:"ratio"`
	Message string  `json:"message"`
}

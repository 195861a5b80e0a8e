package checkout

// Stage is the position of a session in the checkout sequence.
type Stage int

const (
	StageShipping Stage = iota
	StagePayment
	StageReview
)

func (s Stage) String() string {
	switch s {
	case StageShipping:
		return "Shipping"
	case StagePayment:
		return "Payment"
	case StageReview:
		return "Review"
	default:
		return "Unknown"
	}
}

package domain

// Messages shown to the user after a form submission.
const (
	ErrorTitle   = "Error!"
	SuccessTitle = "Success!"

	InvalidFieldsMessage = "Please, input correct values in each field."
	AddedMessage         = "The workout has been successfully added!"
	EditedMessage        = "The workout has been successfully edited!"
)

// ValidationError is a user-correctable input problem.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FormInput holds the raw values of the workout form.
// Only the field matching Kind is read among Cadence and Elevation.
type FormInput struct {
	Kind      string  `json:"type"`
	Distance  float64 `json:"distance"`
	Duration  float64 `json:"duration"`
	Cadence   float64 `json:"cadence"`
	Elevation float64 `json:"elevation"`
}

// Measure returns the kind-specific value of the form.
func (in FormInput) Measure(kind Kind) float64 {
	if kind == KindRun {
		return in.Cadence
	}
	return in.Elevation
}

// Validate checks a form submission. It has no side effects; a non-nil error
// is always a *ValidationError carrying InvalidFieldsMessage.
//
// Elevation gain may be zero but not negative.
func Validate(in FormInput) error {
	kind, ok := ParseKind(in.Kind)
	if !ok {
		return &ValidationError{Message: InvalidFieldsMessage}
	}
	if !finite(in.Distance, in.Duration) || in.Distance <= 0 || in.Duration <= 0 {
		return &ValidationError{Message: InvalidFieldsMessage}
	}
	switch kind {
	case KindRun:
		if !finite(in.Cadence) || in.Cadence <= 0 {
			return &ValidationError{Message: InvalidFieldsMessage}
		}
	case KindRide:
		if !finite(in.Elevation) || in.Elevation < 0 {
			return &ValidationError{Message: InvalidFieldsMessage}
		}
	}
	return nil
}

package entities

// FormState is the JSON view of a reservation form served to the page.
type FormState struct {
	Draft       ReservationDraft  `json:"draft"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Error       string            `json:"error"`
	Status      string            `json:"status"`
}

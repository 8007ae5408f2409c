package entities

// PartySizes is the closed set offered by the party size selector.
var PartySizes = []int{2, 4}

// ReservationDraft is the in-progress reservation held by the form. NoOfPeople is zero until a
// size has been selected.
type ReservationDraft struct {
	Username          string `json:"username" validate:"required"`
	MobileNo          string `json:"mobileNo" validate:"required,len=10"`
	NoOfPeople        int    `json:"noOfPeople" validate:"required,oneof=2 4"`
	TimeOfReservation string `json:"timeOfReservation" validate:"required,datetime_local"`
}

// IsPartySize reports whether n is one of the selectable party sizes.
func IsPartySize(n int) bool {
	for _, size := range PartySizes {
		if size == n {
			return true
		}
	}
	return false
}

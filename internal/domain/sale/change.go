package sale

// Change is the result of settling a received amount against a total.
// When Insufficient is set, Amount carries no meaning and is zero.
type Change struct {
	Amount       int64 `json:"amount"`
	Insufficient bool  `json:"insufficient"`
}

// ComputeChange returns received-total, or an insufficient result when received < total
func ComputeChange(received, total int64) Change {
	if received < total {
		return Change{Insufficient: true}
	}
	return Change{Amount: received - total}
}

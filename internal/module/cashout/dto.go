package cashout

// ConfirmRequest is the payload for confirming an off-platform bank payment.
type ConfirmRequest struct {
	Code string `json:"code" form:"code" binding:"required,max=32"`
}

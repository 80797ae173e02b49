package upgrade

// RejectRequest is the input for rejecting an upgrade request. A reason is
// always required; there is no default.
type RejectRequest struct {
	Reason string `json:"reason" form:"reason" binding:"required,max=500"`
}

package alert

// SendAlertRequest is the payload for broadcasting an alert to all users.
type SendAlertRequest struct {
	Title    string `json:"title" form:"title" binding:"required,max=100"`
	Message  string `json:"message" form:"message" binding:"required,max=500"`
	Severity string `json:"severity" form:"severity" binding:"required,oneof=EMERGENCY WARNING INFO"`
}

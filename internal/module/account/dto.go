package account

// UpdateLevelRequest is the payload for changing an account's level.
type UpdateLevelRequest struct {
	Level string `json:"level" form:"level" binding:"required,oneof=ZERO ONE TWO"`
}

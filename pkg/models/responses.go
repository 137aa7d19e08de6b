package models

// CreatedResponse is the common response for registration and create endpoints
type CreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MessageResponse carries a bare status message
type MessageResponse struct {
	Message string `json:"message"`
}

// BookedResponse is the response for a successful slot booking
type BookedResponse struct {
	Message   string `json:"message"`
	BookingID string `json:"booking_id"`
}

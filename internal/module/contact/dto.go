package contact

// SubmitRequest is the contact form payload, shared by the HTML form and the
// JSON API.
type SubmitRequest struct {
	Name    string `json:"name" form:"name" binding:"required,min=2,max=120"`
	Email   string `json:"email" form:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" form:"subject" binding:"max=200"`
	Message string `json:"message" form:"message" binding:"required,min=10,max=5000"`
}

// SubmitResponse is returned by the JSON API after a message is stored.
type SubmitResponse struct {
	Reference string `json:"reference"`
}

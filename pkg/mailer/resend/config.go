package resend

// Config holds Resend email provider configuration.
type Config struct {
	APIKey      string
	SenderEmail string
	SenderName  string

	// BaseURL overrides the API endpoint. Empty means the public Resend API.
	BaseURL string
}

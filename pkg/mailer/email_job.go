package mailer

// TemplateVerificationCode is the only template this service sends.
const TemplateVerificationCode = "verification_code"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects a rendered template; Subject/Text are used as-is otherwise.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

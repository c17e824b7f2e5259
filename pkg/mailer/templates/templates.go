package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

var verificationCode = template.Must(template.New("verification_code").Parse(`
<html>
  <body style="font-family: sans-serif;">
    <p>Hi {{.Name}},</p>
    <p>Your verification code is:</p>
    <p style="font-size: 28px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
    <p>Enter it in the app to activate your account.</p>
  </body>
</html>
`))

var registry = map[string]*template.Template{
	"verification_code": verificationCode,
}

// RenderHTML renders a named template with the given data.
func RenderHTML(name string, data map[string]any) (string, error) {
	t, ok := registry[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SubjectFor returns the subject line for a templated email.
func SubjectFor(name string) string {
	switch name {
	case "verification_code":
		return "Verify your account"
	default:
		return "Notification"
	}
}

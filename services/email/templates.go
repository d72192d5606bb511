package email

import (
	"fmt"
	"html"
)

const ConfirmationEmailTemplate = `
<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
</head>
<body style="margin: 0; padding: 0; background-color: #f9fafb; font-family: Arial, sans-serif;">
    <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%%" style="background-color: #f9fafb;">
        <tr>
            <td align="center" style="padding: 40px 20px;">
                <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="600" style="max-width: 600px; background-color: #ffffff; border-radius: 8px;">
                    <tr>
                        <td style="padding: 32px; color: #111827;">
                            <h2 style="margin: 0 0 16px 0; font-size: 22px;">%s</h2>
                            <p style="margin: 0; font-size: 16px; line-height: 24px;">%s</p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>`

// RenderNotification wraps the plain-text notification content in the HTML
// layout used for outgoing mail.
func RenderNotification(subject, content string) string {
	s := html.EscapeString(subject)
	return fmt.Sprintf(ConfirmationEmailTemplate, s, s, html.EscapeString(content))
}

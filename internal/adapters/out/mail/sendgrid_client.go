// internal/adapters/out/mail/sendgrid_client.go
package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient implements the checkout usecase's EmailSender port.
type SendGridClient struct {
	apiKey   string
	fromName string
}

func NewSendGridClient(apiKey, fromName string) *SendGridClient {
	if fromName == "" {
		fromName = "Grano"
	}
	return &SendGridClient{apiKey: apiKey, fromName: fromName}
}

// Send sends one transactional email. The body is plain text; the HTML part
// mirrors it so both render.
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c == nil || c.apiKey == "" {
		return fmt.Errorf("sendgrid: api key is empty")
	}
	if from == "" || to == "" {
		return fmt.Errorf("sendgrid: from/to address is empty")
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(c.fromName, from),
		subject,
		sgmail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	response, err := sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: send error: %w", err)
	}
	if response.StatusCode >= 400 {
		log.Printf("[sendgrid] error status=%d body=%s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid: send failed: status=%d", response.StatusCode)
	}

	log.Printf("[sendgrid] mail sent status=%d to=%s subject=%s", response.StatusCode, to, subject)
	return nil
}

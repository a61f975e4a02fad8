package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MailtrapMailer delivers through the Mailtrap HTTP API instead of raw
// SMTP; useful in environments that block outbound port 25.
type MailtrapMailer struct {
	APIURL     string
	APIToken   string
	HTTPClient *http.Client
}

func NewMailtrapMailer(apiURL, apiToken string) *MailtrapMailer {
	return &MailtrapMailer{
		APIURL:     apiURL,
		APIToken:   apiToken,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type mailtrapPerson struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailtrapPayload struct {
	From     mailtrapPerson   `json:"from"`
	To       []mailtrapPerson `json:"to"`
	Cc       []mailtrapPerson `json:"cc,omitempty"`
	Bcc      []mailtrapPerson `json:"bcc,omitempty"`
	Subject  string           `json:"subject"`
	Text     string           `json:"text"`
	Category string           `json:"category,omitempty"`
}

func (m *MailtrapMailer) Send(ctx context.Context, e Email) error {
	if m.APIURL == "" || m.APIToken == "" {
		return fmt.Errorf("mailtrap credentials not configured")
	}
	if len(e.To) == 0 {
		return fmt.Errorf("mailer: at least one recipient required")
	}

	payload := mailtrapPayload{
		From:     mailtrapPerson{Email: e.From, Name: e.FromName},
		To:       toPersons(e.To),
		Cc:       toPersons(e.Cc),
		Bcc:      toPersons(e.Bcc),
		Subject:  e.Subject,
		Text:     e.TextBody,
		Category: "Transactional",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.APIToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("mailtrap API error: %d", res.StatusCode)
	}
	return nil
}

func toPersons(addrs []string) []mailtrapPerson {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]mailtrapPerson, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, mailtrapPerson{Email: a})
	}
	return out
}

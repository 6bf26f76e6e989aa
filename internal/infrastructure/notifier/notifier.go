package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// MailNotifier delivers confirmation links through the mail API. Sending
// is best-effort from the webhook path: the caller logs failures and the
// operator resend endpoint covers lost mail.
type MailNotifier struct {
	apiURL string
	from   string
	tokens *tokenSource
	client *http.Client
}

func NewMailNotifier(apiURL, tokenURL, clientID, clientSecret, from string) *MailNotifier {
	client := &http.Client{Timeout: 10 * time.Second}
	return &MailNotifier{
		apiURL: apiURL,
		from:   from,
		tokens: newTokenSource(tokenURL, clientID, clientSecret, client),
		client: client,
	}
}

func (n *MailNotifier) SendConfirmationLink(ctx context.Context, toEmail, orderID, confirmationURL string) error {
	token, err := n.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("mail token: %w", err)
	}

	body, err := json.Marshal(map[string]string{
		"from":    n.from,
		"to":      toEmail,
		"subject": "Confirm your purchase",
		"text": fmt.Sprintf(
			"Please confirm your purchase (order %s) by opening this link: %s\nThe link expires; if it has, request a new one.",
			orderID, confirmationURL,
		),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail send returned %s", resp.Status)
	}

	slog.Info("confirmation mail sent", "order_id", orderID)
	return nil
}

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultFonnteURL is the Fonnte send endpoint.
const DefaultFonnteURL = "https://api.fonnte.com/send"

// WhatsAppNotifier sends messages through a Fonnte-style WhatsApp gateway.
type WhatsAppNotifier struct {
	APIURL      string
	Token       string
	CountryCode string
	// Target is the default recipient used by Send.
	Target string
	Client *http.Client
}

// NewWhatsAppNotifier creates a gateway client with optional proxy support.
func NewWhatsAppNotifier(apiURL, token, countryCode, proxyURL string) *WhatsAppNotifier {
	if apiURL == "" {
		apiURL = DefaultFonnteURL
	}
	return &WhatsAppNotifier{
		APIURL:      apiURL,
		Token:       token,
		CountryCode: countryCode,
		Client:      newHTTPClient(proxyURL, 10*time.Second),
	}
}

func (w *WhatsAppNotifier) Name() string { return "whatsapp" }

// Send delivers text to the default target.
func (w *WhatsAppNotifier) Send(ctx context.Context, text string) error {
	if w.Target == "" {
		return fmt.Errorf("whatsapp: no default target configured")
	}
	return w.SendTo(ctx, w.Target, text)
}

// SendTo delivers text to one phone number.
func (w *WhatsAppNotifier) SendTo(ctx context.Context, target, text string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("whatsapp: empty target")
	}
	form := url.Values{
		"target":      {target},
		"message":     {text},
		"countryCode": {w.CountryCode},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", w.Token)

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("whatsapp read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whatsapp API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Status bool   `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("whatsapp decode: %w", err)
	}
	if !result.Status {
		return fmt.Errorf("whatsapp rejected message to %s: %s", target, result.Reason)
	}
	return nil
}

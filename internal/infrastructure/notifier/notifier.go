package notifier

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/doomlife/settlement-service/internal/domain"
)

// HTTPNotifier posts per-winner messages to the notification dispatcher.
// Fire-and-forget: delivery failures are logged and never retried here.
type HTTPNotifier struct {
	dispatchURL string
}

func NewHTTPNotifier(dispatchURL string) *HTTPNotifier {
	return &HTTPNotifier{dispatchURL: dispatchURL}
}

func (n *HTTPNotifier) NotifyPayout(userID, eventID string, token domain.Outcome, amount int64) {
	n.send(PayoutNotification{
		Kind:    "payout",
		UserID:  userID,
		EventID: eventID,
		Token:   string(token),
		Amount:  amount,
	})
}

func (n *HTTPNotifier) NotifyRefund(userID, eventID string, token domain.Outcome, amount int64) {
	n.send(PayoutNotification{
		Kind:    "refund",
		UserID:  userID,
		EventID: eventID,
		Token:   string(token),
		Amount:  amount,
	})
}

func (n *HTTPNotifier) send(payload PayoutNotification) {
	if n.dispatchURL == "" {
		return
	}
	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Failed to marshal notification: %v\n", err)
			return
		}

		req, err := http.NewRequest("POST", n.dispatchURL, bytes.NewBuffer(body))
		if err != nil {
			log.Printf("Failed to create notification request: %v\n", err)
			return
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Printf("Notification failed: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("Notification returned status %d", resp.StatusCode)
		}
	}()
}

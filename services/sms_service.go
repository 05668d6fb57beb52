// services/sms_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// SMSService sends transactional SMS through the Fast2SMS bulk API.
type SMSService struct {
	APIKey   string
	SenderID string
	APIPath  string
	Client   *http.Client
	logger   *log.Logger
}

// fast2smsResponse is the JSON envelope Fast2SMS returns.
type fast2smsResponse struct {
	Return    bool     `json:"return"`
	RequestID string   `json:"request_id"`
	Message   []string `json:"message"`
}

// NewSMSService builds a client from FAST2SMS_API_KEY and
// FAST2SMS_SENDER_ID.
func NewSMSService() *SMSService {
	senderID := os.Getenv("FAST2SMS_SENDER_ID")
	if senderID == "" {
		senderID = "IMMPLUS"
	}
	return &SMSService{
		APIKey:   os.Getenv("FAST2SMS_API_KEY"),
		SenderID: senderID,
		APIPath:  "https://www.fast2sms.com/dev/bulkV2",
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.New(os.Stdout, "[SMS] ", log.LstdFlags),
	}
}

// Send delivers one message to one phone number.
func (s *SMSService) Send(ctx context.Context, phone, message string) error {
	if s.APIKey == "" {
		return fmt.Errorf("FAST2SMS_API_KEY is not configured")
	}

	params := url.Values{}
	params.Set("authorization", s.APIKey)
	params.Set("sender_id", s.SenderID)
	params.Set("numbers", phone)
	params.Set("message", message)
	params.Set("route", "q")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIPath, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read SMS response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, string(body))
	}

	var smsResp fast2smsResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}
	if !smsResp.Return {
		return fmt.Errorf("SMS sending failed: %s", strings.Join(smsResp.Message, "; "))
	}

	s.logger.Printf("SMS sent to %s, request id %s", phone, smsResp.RequestID)
	return nil
}

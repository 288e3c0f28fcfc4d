package greenapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const personalChatSuffix = "@c.us"

// Client sends WhatsApp messages through a GreenAPI instance.
type Client struct {
	baseURL    string
	idInstance string
	token      string
	client     *http.Client
}

func NewClient(baseURL, idInstance, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		idInstance: idInstance,
		token:      token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type sendResponse struct {
	IDMessage string `json:"idMessage"`
}

// Send delivers text to the phone number recipient.
func (c *Client) Send(ctx context.Context, recipient, text string) error {
	reqBody, err := json.Marshal(sendRequest{
		ChatID:  ChatIDFromPhone(recipient),
		Message: text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", c.baseURL, c.idInstance, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("greenapi send: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("greenapi unexpected status code: %d body=%q", resp.StatusCode, string(body))
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return fmt.Errorf("greenapi failed to decode json: %w body=%q", err, string(body))
	}
	if sr.IDMessage == "" {
		return fmt.Errorf("greenapi missing idMessage in response body=%q", string(body))
	}
	return nil
}

// ChatIDFromPhone turns "628123" or "+628123" into "628123@c.us".
func ChatIDFromPhone(phone string) string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if strings.HasSuffix(phone, personalChatSuffix) {
		return phone
	}
	return phone + personalChatSuffix
}

// PhoneFromChatID is the inverse of ChatIDFromPhone. It reports false for group chats.
func PhoneFromChatID(chatID string) (string, bool) {
	phone, ok := strings.CutSuffix(chatID, personalChatSuffix)
	if !ok || phone == "" {
		return "", false
	}
	return phone, true
}

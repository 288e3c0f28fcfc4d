package greenapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"task_reminder_bot/internal/domain/messaging"
)

const typeIncomingMessage = "incomingMessageReceived"

// WebhookRequest is the subset of a GreenAPI notification the bot reads.
type WebhookRequest struct {
	TypeWebhook string `json:"typeWebhook"`
	SenderData  struct {
		ChatID string `json:"chatId"`
		Sender string `json:"sender"`
	} `json:"senderData"`
	MessageData struct {
		TypeMessage     string `json:"typeMessage"`
		TextMessageData struct {
			TextMessage string `json:"textMessage"`
		} `json:"textMessageData"`
		ExtendedTextMessageData struct {
			Text string `json:"text"`
		} `json:"extendedTextMessageData"`
	} `json:"messageData"`
}

// Text returns the message body for plain and extended text messages.
func (r WebhookRequest) Text() (string, bool) {
	switch r.MessageData.TypeMessage {
	case "textMessage":
		return r.MessageData.TextMessageData.TextMessage, true
	case "extendedTextMessage":
		return r.MessageData.ExtendedTextMessageData.Text, true
	}
	return "", false
}

type WebhookHandler struct {
	handler messaging.Handler
	sender  messaging.Sender
	token   string
	logger  *logrus.Entry
}

// NewWebhookHandler answers inbound WhatsApp texts. A non-empty token must be
// presented as a Bearer Authorization header.
func NewWebhookHandler(handler messaging.Handler, sender messaging.Sender, token string, logger *logrus.Entry) *WebhookHandler {
	return &WebhookHandler{handler: handler, sender: sender, token: token, logger: logger}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.token != "" && r.Header.Get("Authorization") != "Bearer "+h.token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid greenapi webhook request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TypeWebhook != typeIncomingMessage {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	phone, ok := PhoneFromChatID(req.SenderData.ChatID)
	text, isText := req.Text()
	if !ok || !isText || strings.TrimSpace(text) == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	logCtx := h.logger.WithField("sender_id", phone)
	answer := h.handler.HandleMessage(r.Context(), phone, text)
	if answer != "" {
		// The transition is already saved, so a failed reply is still acknowledged.
		if err := h.sender.Send(r.Context(), phone, answer); err != nil {
			logCtx.WithError(err).Error("Failed to send reply")
			writeJSON(w, http.StatusOK, map[string]string{"status": "reply_failed"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

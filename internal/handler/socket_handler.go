package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/localaid-backend/internal/realtime"
	"github.com/shinyyama/localaid-backend/internal/service"
)

type SocketHandler struct {
	hub        *realtime.Hub
	presence   service.PresenceService
	upgrader   websocket.Upgrader
	sendBuffer int
	pongWait   time.Duration
}

func NewSocketHandler(hub *realtime.Hub, presence service.PresenceService, checkOrigin func(r *http.Request) bool, sendBuffer int, pongWait time.Duration) *SocketHandler {
	return &SocketHandler{
		hub:      hub,
		presence: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		sendBuffer: sendBuffer,
		pongWait:   pongWait,
	}
}

type setupData struct {
	UserID string `json:"userId"`
}

type conversationData struct {
	ConversationID conversationRef `json:"conversationId"`
}

type newMessageData struct {
	ConversationID conversationRef `json:"conversationId"`
	Text           string          `json:"text"`
	ImageURL       *string         `json:"imageUrl"`
}

type socketError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Event   string `json:"event,omitempty"`
}

// conversationRef accepts ids sent as JSON numbers or numeric strings.
type conversationRef uint64

func (r *conversationRef) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q", s)
	}
	*r = conversationRef(v)
	return nil
}

// Serve upgrades an authenticated request and runs the connection's read loop.
// Returning from Serve always unbinds the connection.
func (h *SocketHandler) Serve(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("[ws] uid=%s upgrade failed: %v", uid, err)
		return nil
	}
	client := realtime.NewClient(ws, h.sendBuffer, h.pongWait)
	go client.WritePump()
	defer h.presence.Disconnect(client)

	log.Printf("[ws] conn=%s uid=%s open", client.ID, uid)
	client.PrepareRead()
	ctx := c.Request().Context()
	for {
		data, err := client.ReadFrame()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] conn=%s uid=%s read error: %v", client.ID, uid, err)
			}
			log.Printf("[ws] conn=%s uid=%s closed", client.ID, uid)
			return nil
		}
		h.dispatch(ctx, client, uid, data)
	}
}

func (h *SocketHandler) dispatch(ctx context.Context, client *realtime.Client, uid string, raw []byte) {
	frame, err := realtime.Decode(raw)
	if err != nil {
		h.fail(client, "", fmt.Errorf("%w: malformed frame", service.ErrInvalidInput))
		return
	}
	switch frame.Event {
	case realtime.EventSetup:
		var d setupData
		if err := decodeData(frame, &d); err != nil {
			h.fail(client, frame.Event, err)
			return
		}
		err = h.presence.Setup(ctx, client, uid, d.UserID)
	case realtime.EventJoinChat:
		var d conversationData
		if err := decodeData(frame, &d); err != nil {
			h.fail(client, frame.Event, err)
			return
		}
		err = h.presence.Join(ctx, client, uint64(d.ConversationID))
	case realtime.EventTyping, realtime.EventStopTyping:
		var d conversationData
		if err := decodeData(frame, &d); err != nil {
			h.fail(client, frame.Event, err)
			return
		}
		err = h.presence.RelayTyping(ctx, client, uint64(d.ConversationID), frame.Event == realtime.EventTyping)
	case realtime.EventNewMessage:
		var d newMessageData
		if err := decodeData(frame, &d); err != nil {
			h.fail(client, frame.Event, err)
			return
		}
		_, err = h.presence.RelayMessage(ctx, client, uid, uint64(d.ConversationID), service.MessageInput{Text: d.Text, ImageURL: d.ImageURL})
	default:
		err = fmt.Errorf("%w: unknown event %q", service.ErrInvalidInput, frame.Event)
	}
	if err != nil {
		h.fail(client, frame.Event, err)
	}
}

func decodeData(frame realtime.Frame, v interface{}) error {
	if len(frame.Data) == 0 {
		return fmt.Errorf("%w: missing data", service.ErrInvalidInput)
	}
	if err := json.Unmarshal(frame.Data, v); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return nil
}

// fail reports a rejected event to the sender only; the connection stays open.
func (h *SocketHandler) fail(client *realtime.Client, event string, err error) {
	status, code := ErrorCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[ws] conn=%s event=%q err=%v", client.ID, event, err)
		msg = "internal error"
	}
	payload, encErr := realtime.Encode(realtime.EventError, socketError{Code: code, Message: msg, Event: event})
	if encErr != nil {
		return
	}
	h.hub.Send(client, payload)
}

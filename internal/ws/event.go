package ws

// Server -> client event names
const (
	EventNewMessage       = "new-message"
	EventMessagesRead     = "messages-read"
	EventUserTyping       = "user-typing"
	EventUserStopTyping   = "user-stop-typing"
	EventUserStatusUpdate = "user-status-update"
	EventUserStatuses     = "user-statuses"
	EventNotification     = "notification"
	EventError            = "error"
)

// Client -> server event names
const (
	EventJoinRoom        = "join-room"
	EventLeaveRoom       = "leave-room"
	EventSendMessage     = "send-message"
	EventTyping          = "typing"
	EventStopTyping      = "stop-typing"
	EventMarkRead        = "mark-read"
	EventUserStatus      = "user-status"
	EventGetUserStatuses = "get-user-statuses"
)

// Event is the frame written to clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ClientEvent is the frame read from clients. One flat shape; which fields
// matter depends on Type.
type ClientEvent struct {
	Type       string   `json:"type"`
	RoomID     string   `json:"room_id,omitempty"`
	Content    string   `json:"content,omitempty"`
	ReplyToID  string   `json:"reply_to_id,omitempty"`
	MessageIDs []string `json:"message_ids,omitempty"`
	UserIDs    []string `json:"user_ids,omitempty"`
	Online     *bool    `json:"online,omitempty"`
}

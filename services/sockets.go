package services

import (
	"fmt"
	"log/slog"

	socketio "github.com/googollee/go-socket.io"
	"github.com/opengrove/commune-api/utils"
)

type SocketContext struct {
	AccountID uint64
}

// SocketsService is the realtime transport for notifications. Clients
// subscribe with their auth token and join a per-account room; trust
// state changes are then pushed to whichever of the user's devices are
// connected. It implements NotificationTransport.
type SocketsService struct {
	Server            *socketio.Server
	AuthTokensService *AuthTokensService
	buffers           *NotificationBufferGroup
}

func (s *SocketsService) Setup() {

	// Create the replay buffers
	s.buffers = &NotificationBufferGroup{}
	s.buffers.Setup()

	// Add handlers to the socket server
	s.Server.OnConnect("/", func(conn socketio.Conn) error {
		slog.Debug("client connected", "ip", utils.GetIpAddress(conn.RemoteHeader(), conn.RemoteAddr()))
		conn.SetContext(SocketContext{})
		return nil
	})

	// When a socket disconnects
	s.Server.OnDisconnect("/", func(conn socketio.Conn, reason string) {
		slog.Debug("client disconnected", "ip", utils.GetIpAddress(conn.RemoteHeader(), conn.RemoteAddr()))
		conn.LeaveAll()
	})

	// Register all of the event handlers
	s.Server.OnEvent("/", "notifications.subscribe", s.OnSubscribe)

}

// accountRoom is the socket room carrying one account's notifications
func accountRoom(accountID uint64) string {
	return fmt.Sprintf("account_%d", accountID)
}

//====================================================================================================
// notifications.subscribe event handler
// Called when a client wants to receive its account's notifications
//====================================================================================================

type SubscribeMsg struct {
	Token string `json:"token"`
}

func (s *SocketsService) OnSubscribe(conn socketio.Conn, data SubscribeMsg) error {

	// Validate the token and resolve the account
	account, err := s.AuthTokensService.ValidateToken(data.Token)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("invalid token")
	}

	// Remember the account on the connection and join its room
	conn.SetContext(SocketContext{AccountID: account.ID})
	conn.Join(accountRoom(account.ID))

	// Emit the recently-pushed notifications to the new connection, so
	// a client connecting just after a state change still sees it
	for _, evt := range s.buffers.CopyEvents(account.ID) {
		conn.Emit(evt.Event, evt.Payload)
	}

	return nil

}

// Emit pushes an event to every connected device of the account. It
// also records the event in the replay buffer for late subscribers.
func (s *SocketsService) Emit(accountID uint64, event string, payload map[string]interface{}) bool {
	s.buffers.PushEvent(accountID, &BufferedEvent{
		Event:   event,
		Payload: payload,
	})
	return s.Server.BroadcastToRoom("/", accountRoom(accountID), event, payload)
}

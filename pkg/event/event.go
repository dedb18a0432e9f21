// Package event defines the typed outbound events the game core emits.
// The core never touches a connection: it appends events to its buffer,
// and the connection layer drains them and fans them out.
package event

// Type discriminates outbound events.
type Type string

const (
	// TypeMessage is a line of text for a single player.
	TypeMessage Type = "message"
	// TypeRoomBroadcast is a line of text for every listed recipient.
	// Recipients are resolved by the core at emit time so the transport
	// never needs world access.
	TypeRoomBroadcast Type = "room_broadcast"
	// TypePlayerUpdate marks a player's state as needing persistence.
	TypePlayerUpdate Type = "player_update"
	// TypeDisconnect asks the transport to close a player's connection.
	TypeDisconnect Type = "disconnect"
)

// Event is one outbound notification from the game core.
type Event struct {
	Type       Type
	PlayerID   string
	Recipients []string
	Text       string
}

// Message builds a single-player text event.
func Message(playerID, text string) Event {
	return Event{Type: TypeMessage, PlayerID: playerID, Text: text}
}

// RoomBroadcast builds a text event for a resolved recipient list.
func RoomBroadcast(recipients []string, text string) Event {
	return Event{Type: TypeRoomBroadcast, Recipients: recipients, Text: text}
}

// PlayerUpdate builds a persistence marker for a player.
func PlayerUpdate(playerID string) Event {
	return Event{Type: TypePlayerUpdate, PlayerID: playerID}
}

// Disconnect builds a connection-close request for a player.
func Disconnect(playerID string) Event {
	return Event{Type: TypeDisconnect, PlayerID: playerID}
}

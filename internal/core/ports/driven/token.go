package driven

import "time"

// RoomGrants are the capabilities minted into a realtime session credential.
type RoomGrants struct {
	Room           string
	RoomJoin       bool
	CanPublish     bool
	CanSubscribe   bool
	CanPublishData bool
}

// RoomTokenIssuer mints scoped realtime-session credentials bound to one
// room and one identity.
type RoomTokenIssuer interface {
	Mint(identity, name string, grants RoomGrants, ttl time.Duration) (string, error)
}

package relay

import "nexthire/chat/internal/models"

// relayed maps the events a client may send to the name delivered to the
// other members of the room.
var relayed = map[string]string{
	models.EventSendMessage: models.EventReceiveMessage,
	models.EventTyping:      models.EventTyping,
	models.EventStopTyping:  models.EventStopTyping,
	models.EventCallUser:    models.EventCallUser,
	models.EventAnswerCall:  models.EventCallAccepted,
	models.EventEndCall:     models.EventCallEnded,
}

// Translate returns the delivered name of a client event.
func Translate(name string) (string, bool) {
	out, ok := relayed[name]
	return out, ok
}

// Envelope carries a relayed event between instances.
type Envelope struct {
	Origin string       `json:"origin"`
	Event  models.Event `json:"event"`
}

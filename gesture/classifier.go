// Package gesture turns raw BLE notification payloads into semantic bus
// events.
//
// The token vocabulary is a placeholder: the ring's real GATT profile is not
// public, so classification is driven by a swappable Vocabulary value instead
// of a hard-coded protocol decoder. Replace the vocabulary (or load one from
// a profile file) once the actual notification format is known.
package gesture

import (
	"encoding/hex"
	"strings"
)

// Bus topics emitted by the classifier.
const (
	TopicRawNotify    = "raw_notify"
	TopicButtonSingle = "button_single"
	TopicButtonDouble = "button_double"
	TopicButtonLong   = "button_long"
)

// Topics returns the gesture topics the default vocabulary can emit, in a
// stable order. The raw_notify topic is not included; it is a diagnostic
// channel, not a gesture.
func Topics() []string {
	return []string{TopicButtonSingle, TopicButtonDouble, TopicButtonLong}
}

// Event is a classified emission destined for the event bus.
type Event struct {
	Topic   string
	Payload any
}

// NotifyPayload is the payload of every raw_notify event.
type NotifyPayload struct {
	UUID    string `json:"uuid"`
	DataHex string `json:"data_hex"`
}

// GesturePayload is the payload of a button_* event.
type GesturePayload struct {
	UUID string `json:"uuid"`
	Text string `json:"text"`
}

// Classify maps one raw notification to bus events.
//
// The first event is always raw_notify carrying the hex payload. A second
// event is appended iff the payload, decoded as UTF-8 (invalid bytes
// dropped), trimmed and lowercased, exactly matches a vocabulary token.
// Classification never fails; unmatchable payloads yield the raw event only.
func (v Vocabulary) Classify(charUUID string, data []byte) []Event {
	events := []Event{{
		Topic:   TopicRawNotify,
		Payload: NotifyPayload{UUID: charUUID, DataHex: hex.EncodeToString(data)},
	}}

	text := strings.ToLower(strings.TrimSpace(strings.ToValidUTF8(string(data), "")))
	if text == "" {
		return events
	}

	if topic, ok := v[text]; ok {
		events = append(events, Event{
			Topic:   topic,
			Payload: GesturePayload{UUID: charUUID, Text: text},
		})
	}

	return events
}

package types

// MessageKind tags a Message. The set is closed: error and success.
type MessageKind string

// Message kinds.
const (
	KindError   MessageKind = "error"
	KindSuccess MessageKind = "success"
)

// Message is a one-time notification attached to a list or todo operation.
// Messages are values; once created they do not change.
type Message struct {
	Kind MessageKind `json:"kind"`
	Text string      `json:"text"`
}

// ErrorMessage returns an error-kind message.
func ErrorMessage(text string) Message {
	return Message{Kind: KindError, Text: text}
}

// SuccessMessage returns a success-kind message.
func SuccessMessage(text string) Message {
	return Message{Kind: KindSuccess, Text: text}
}

// IsError reports whether m is an error message.
func (m Message) IsError() bool { return m.Kind == KindError }

// IsSuccess reports whether m is a success message.
func (m Message) IsSuccess() bool { return m.Kind == KindSuccess }

// IsZero reports whether m carries no notification.
func (m Message) IsZero() bool { return m.Kind == "" && m.Text == "" }

// Valid reports whether m has a recognized kind.
func (m Message) Valid() bool {
	return m.Kind == KindError || m.Kind == KindSuccess
}

package message

// Structured record handed to the transport, serialized in this key order
type Record struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	PID     int    `json:"@pid"`
}

// Builds records for one run. Type, PID and escape mode are fixed at start.
type Formatter struct {
	msgType    string
	pid        int
	escapeMode string
}

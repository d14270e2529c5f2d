// Formats raw input lines into JSON-line records
package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"logpush/internal/global"
	"strings"
)

// Creates a formatter, rejecting unknown escape modes
func NewFormatter(msgType string, pid int, escapeMode string) (new *Formatter, err error) {
	if escapeMode == "" {
		escapeMode = global.DefaultEscapeMode
	}
	if escapeMode != global.EscapeBackslash && escapeMode != global.EscapeSubstitute {
		err = fmt.Errorf("unknown escape mode '%s' (expected '%s' or '%s')",
			escapeMode, global.EscapeBackslash, global.EscapeSubstitute)
		return
	}
	if msgType == "" {
		msgType = global.DefaultMessageType
	}

	new = &Formatter{
		msgType:    msgType,
		pid:        pid,
		escapeMode: escapeMode,
	}
	return
}

// Applies the substitution policy to raw text. Backslash mode leaves text as is,
// escaping happens during encoding.
func Substitute(text string, escapeMode string) (out string) {
	if escapeMode == global.EscapeSubstitute {
		out = strings.ReplaceAll(text, `"`, `'`)
		return
	}
	out = text
	return
}

// Renders one line as a single JSON object without trailing newline
func (formatter *Formatter) Format(line string) (record []byte, err error) {
	var buf bytes.Buffer
	buf.Grow(len(line) + len(formatter.msgType) + 48)

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false) // keep <, > and & readable for downstream parsers

	err = encoder.Encode(Record{
		Message: Substitute(line, formatter.escapeMode),
		Type:    formatter.msgType,
		PID:     formatter.pid,
	})
	if err != nil {
		err = fmt.Errorf("failed to encode record: %w", err)
		return
	}

	record = bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return
}

// Message type label stamped on every record
func (formatter *Formatter) Type() (msgType string) {
	msgType = formatter.msgType
	return
}

// Active escape mode
func (formatter *Formatter) EscapeMode() (mode string) {
	mode = formatter.escapeMode
	return
}

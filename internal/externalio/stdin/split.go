package stdin

import "bytes"

// Splits chunk (prefixed by any leftover tail) into complete lines.
// Returns the unterminated remainder for the next read.
func splitLines(tail []byte, chunk []byte) (lines []string, rest []byte) {
	data := chunk
	if len(tail) > 0 {
		data = append(tail, chunk...)
	}

	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, trimTerminator(string(data[:idx+1])))
		data = data[idx+1:]
	}

	if len(data) > 0 {
		// copy so the read buffer can be reused
		rest = append([]byte(nil), data...)
	}
	return
}

// Removes a single trailing "\n" or "\r\n", nothing else
func trimTerminator(line string) (trimmed string) {
	trimmed = line
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '\n' {
		trimmed = trimmed[:len(trimmed)-1]
		if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '\r' {
			trimmed = trimmed[:len(trimmed)-1]
		}
	}
	return
}

package codec

import (
	"fmt"
	"strings"

	"github.com/hoxchess/hoxnet/rpc/common"
)

const (
	// Delimiter separates the tag and the positional fields of a line
	Delimiter = ";"

	// replyCodeOK is the reply code for success
	replyCodeOK = "0"
)

// Decode converts a wire line into a Command.
// Missing trailing fields are empty, extra fields are ignored. A line
// without a known tag yields an *common.UnknownCommandError.
func Decode(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, Delimiter)

	tag := strings.TrimSpace(parts[0])
	kind, ok := kindsByTag[tag]
	if !ok {
		return Command{}, &common.UnknownCommandError{Tag: tag, Line: line}
	}

	fields := commandSpecs[kind].fields
	params := make(map[string]string, len(fields))
	for i, name := range fields {
		if i+1 < len(parts) {
			params[name] = parts[i+1]
		} else {
			params[name] = ""
		}
	}

	return Command{Kind: kind, Params: params}, nil
}

// EncodeRequestBody converts a kind and its named fields into a wire line
// (terminated by a newline). Trailing empty fields are left out.
func EncodeRequestBody(kind CommandKind, fields map[string]string) (string, error) {
	names := kind.Fields()
	if names == nil {
		return "", &common.UnknownCommandError{Tag: kind.String()}
	}

	// reject fields that are not part of the layout, they would be lost
	for name := range fields {
		if !kind.HasField(name) {
			return "", fmt.Errorf("%s has no field %q", kind, name)
		}
	}

	values := make([]string, len(names))
	for i, name := range names {
		v := fields[name]
		if strings.ContainsAny(v, Delimiter+"\r\n") {
			return "", fmt.Errorf("%w: %s=%q", common.ErrInvalidField, name, v)
		}
		values[i] = v
	}

	// trim trailing empty fields
	n := len(values)
	for n > 0 && values[n-1] == "" {
		n--
	}

	var sb strings.Builder
	sb.WriteString(kind.String())
	for _, v := range values[:n] {
		sb.WriteString(Delimiter)
		sb.WriteString(v)
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

// MustEncode is like EncodeRequestBody but panics on error.
// Only meant for constant inputs.
func MustEncode(kind CommandKind, fields map[string]string) string {
	s, err := EncodeRequestBody(kind, fields)
	if err != nil {
		panic(err)
	}
	return s
}

// --------------------------------------------------------------------------
// Direct replies
// --------------------------------------------------------------------------

// ParseReply splits a direct reply of the form "<code>\r\n<message>\r\n".
// An empty reply yields an empty code.
func ParseReply(data string) (code string, message string) {
	data = strings.TrimLeft(data, "\r\n")
	if data == "" {
		return "", ""
	}

	head, rest, _ := strings.Cut(data, "\n")
	code = strings.TrimSpace(head)
	message = strings.TrimRight(rest, "\r\n")
	return code, message
}

// FormatReply builds a direct reply
func FormatReply(code string, message string) string {
	return code + "\r\n" + message + "\r\n"
}

// ReplyOK reports whether a reply code signals success
func ReplyOK(code string) bool {
	return code == replyCodeOK
}

// CodeFailed reports whether an embedded code signals failure. An empty
// code means the server did not report one.
func CodeFailed(code string) bool {
	return code != "" && code != replyCodeOK
}

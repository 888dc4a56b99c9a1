// Package protocol implements the control bus's line-oriented wire
// format: command parsing and response serialization. It deliberately
// mirrors Redis's textual shape (RPOP, LLEN, inline arguments) without
// being Redis-compatible; see Response.Serialize for wire details.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseCommand splits a client line into an upper-cased command name
// and its whitespace-separated arguments. An empty (post-trim) line is
// an error.
func ParseCommand(line string) (string, []string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil, fmt.Errorf("empty command")
	}
	parts := strings.Fields(line)
	command := strings.ToUpper(parts[0])
	return command, parts[1:], nil
}

// ResponseKind distinguishes the six server->client wire shapes.
type ResponseKind int

const (
	KindOK ResponseKind = iota
	KindOKWithData
	KindError
	KindString
	KindArray
	KindJSON
)

// Response is a server->client reply. Exactly one of Data/Message/Items
// is meaningful, selected by Kind; JSON carries a pre-marshaled payload.
type Response struct {
	Kind    ResponseKind
	Data    string   // KindOKWithData
	Message string   // KindError, KindString
	Items   []string // KindArray
	JSON    string   // KindJSON, already-serialized (no trailing newline)
}

// OK builds a bare "+OK" response.
func OK() Response { return Response{Kind: KindOK} }

// OKWithData builds a "+OK <data>" response.
func OKWithData(data string) Response { return Response{Kind: KindOKWithData, Data: data} }

// Errorf builds a "-ERR <message>" response.
func Errorf(format string, args ...any) Response {
	return Response{Kind: KindError, Message: fmt.Sprintf(format, args...)}
}

// StringResponse builds a quoted-string response.
func StringResponse(s string) Response { return Response{Kind: KindString, Message: s} }

// ArrayResponse builds a quoted-array response.
func ArrayResponse(items []string) Response { return Response{Kind: KindArray, Items: items} }

// JSONResponse marshals v and builds a raw-JSON-line response.
func JSONResponse(v any) (Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Response{}, fmt.Errorf("protocol: marshaling json response: %w", err)
	}
	return Response{Kind: KindJSON, JSON: string(data)}, nil
}

// Serialize renders the response in wire format, including the
// trailing newline.
func (r Response) Serialize() string {
	switch r.Kind {
	case KindOK:
		return "+OK\n"
	case KindOKWithData:
		return fmt.Sprintf("+OK %s\n", r.Data)
	case KindError:
		return fmt.Sprintf("-ERR %s\n", r.Message)
	case KindString:
		return quoteString(r.Message) + "\n"
	case KindArray:
		quoted := make([]string, len(r.Items))
		for i, item := range r.Items {
			quoted[i] = quoteString(item)
		}
		return fmt.Sprintf("[%s]\n", strings.Join(quoted, ", "))
	case KindJSON:
		return r.JSON + "\n"
	default:
		return "-ERR internal: unknown response kind\n"
	}
}

// quoteString wraps s in double quotes, backslash-escaping only inner
// double quotes (not a general escape like Go's %q).
func quoteString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

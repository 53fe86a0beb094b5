package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/tasklist/internal/model"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeComplete Type = "done"
	TypeDelete   Type = "delete"
	TypeUpdate   Type = "update"
	TypeSort     Type = "sort"
	TypeFind     Type = "find"
	TypeClear    Type = "clear"
)

var aliases = map[string]Type{
	"add":      TypeAdd,
	"done":     TypeComplete,
	"complete": TypeComplete,
	"delete":   TypeDelete,
	"del":      TypeDelete,
	"rm":       TypeDelete,
	"update":   TypeUpdate,
	"set":      TypeUpdate,
	"sort":     TypeSort,
	"find":     TypeFind,
	"filter":   TypeFind,
	"search":   TypeFind,
	"clear":    TypeClear,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Attrs are the optional key:value tokens shared by add and update. Empty
// strings mean "not given".
type Attrs struct {
	Category string
	Priority string
	Due      string
}

func (a Attrs) IsEmpty() bool {
	return a.Category == "" && a.Priority == "" && a.Due == ""
}

type AddArgs struct {
	Titles string
	Attrs
}

type SelectArgs struct {
	Selector string
}

type UpdateArgs struct {
	Selector string
	Attrs
}

type SortArgs struct {
	// Mode is empty for a toggle.
	Mode string
}

type FindArgs struct {
	Keyword string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Complete *SelectArgs
	Delete   *SelectArgs
	Update   *UpdateArgs
	Sort     *SortArgs
	Find     *FindArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	typ, ok := aliases[head]
	if !ok {
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
	switch typ {
	case TypeAdd:
		return parseAdd(input, strings.TrimSpace(raw[len(parts[0]):]), args)
	case TypeComplete, TypeDelete:
		return parseSelect(input, typ, args)
	case TypeUpdate:
		return parseUpdate(input, args)
	case TypeSort:
		return parseSort(input, args)
	case TypeFind:
		return parseFind(input, args)
	default:
		return Command{Type: TypeClear, Raw: input}, nil
	}
}

// splitAttrs separates cat:/prio:/due: tokens from the remaining words.
func splitAttrs(args []string) (Attrs, []string, error) {
	var attrs Attrs
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, ":")
		if !found {
			rest = append(rest, arg)
			continue
		}
		if !isAttrKey(key) {
			rest = append(rest, arg)
			continue
		}
		switch strings.ToLower(key) {
		case "cat", "category":
			attrs.Category = value
		case "prio", "priority":
			if _, err := model.ParsePriority(value); err != nil {
				return Attrs{}, nil, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("priority must be 1-4 or a label, got %q", value)}
			}
			attrs.Priority = value
		case "due":
			attrs.Due = value
		}
	}
	return attrs, rest, nil
}

func isAttrKey(key string) bool {
	switch strings.ToLower(key) {
	case "cat", "category", "prio", "priority", "due":
		return true
	}
	return false
}

// stripAttrs removes attribute tokens from body and keeps the spacing of
// everything else.
func stripAttrs(body string) string {
	var b strings.Builder
	i := 0
	for i < len(body) {
		start := i
		for start < len(body) && isSpace(body[start]) {
			start++
		}
		end := start
		for end < len(body) && !isSpace(body[end]) {
			end++
		}
		if end == start {
			break
		}
		key, _, found := strings.Cut(body[start:end], ":")
		if !found || !isAttrKey(key) {
			b.WriteString(body[i:end])
		}
		i = end
	}
	return strings.TrimSpace(b.String())
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func parseAdd(raw, body string, args []string) (Command, error) {
	attrs, _, err := splitAttrs(args)
	if err != nil {
		return Command{}, err
	}
	titles := stripAttrs(body)
	if strings.Trim(titles, "; ") == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Titles: titles, Attrs: attrs}}, nil
}

func parseSelect(raw string, typ Type, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires positions, e.g. 1,3-5", typ)}
	}
	sel := &SelectArgs{Selector: strings.Join(args, " ")}
	if typ == TypeComplete {
		return Command{Type: typ, Raw: raw, Complete: sel}, nil
	}
	return Command{Type: typ, Raw: raw, Delete: sel}, nil
}

func parseUpdate(raw string, args []string) (Command, error) {
	attrs, rest, err := splitAttrs(args)
	if err != nil {
		return Command{}, err
	}
	if len(rest) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "update requires positions"}
	}
	if attrs.IsEmpty() {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "update requires at least one of cat:, prio:, due:"}
	}
	return Command{Type: TypeUpdate, Raw: raw, Update: &UpdateArgs{Selector: strings.Join(rest, " "), Attrs: attrs}}, nil
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sort takes at most one mode"}
	}
	mode := ""
	if len(args) == 1 {
		mode = strings.ToLower(args[0])
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Mode: mode}}, nil
}

func parseFind(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "find requires a keyword"}
	}
	return Command{Type: TypeFind, Raw: raw, Find: &FindArgs{Keyword: strings.Join(args, " ")}}, nil
}

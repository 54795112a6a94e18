package merge

import (
	"encoding/json"
	"errors"
	"path"
	"reflect"
	"strings"
)

// HooksKey is the settings key whose event lists are unioned instead of replaced.
const HooksKey = "hooks"

// ErrNotObject is returned when a settings document root is not a JSON object.
var ErrNotObject = errors.New("settings document is not an object")

// Document is a decoded settings.json. Values are the types produced by
// encoding/json when decoding into any.
type Document = map[string]any

// Hook describes a single hook registration to add under hooks.<Event>.
type Hook struct {
	Name    string // hook name, used for duplicate detection
	Event   string // e.g. "UserPromptSubmit"
	Type    string // e.g. "command"
	Command string // command path written into the entry
	Timeout *int   // optional timeout in seconds
}

// Merge deep-merges src into dst and returns the result. Neither input is
// modified.
//
// Keys missing from dst are copied from src. When both hold objects the merge
// recurses, except for the "hooks" key, whose per-event lists are unioned by
// structural equality. Any other collision (scalars, arrays, mismatched
// types) takes the source value.
func Merge(src, dst Document) Document {
	out := cloneDocument(dst)
	if out == nil {
		out = Document{}
	}
	mergeInto(out, src)
	return out
}

func mergeInto(dst, src map[string]any) {
	for key, sv := range src {
		dv, ok := dst[key]
		if !ok {
			dst[key] = cloneValue(sv)
			continue
		}
		dm, dIsObj := dv.(map[string]any)
		sm, sIsObj := sv.(map[string]any)
		switch {
		case key == HooksKey && dIsObj && sIsObj:
			unionHooks(dm, sm)
		case dIsObj && sIsObj:
			mergeInto(dm, sm)
		default:
			dst[key] = cloneValue(sv)
		}
	}
}

// unionHooks appends every source entry that is not already present (by
// value) in the destination list for the same event.
func unionHooks(dst, src map[string]any) {
	for event, sv := range src {
		dv, ok := dst[event]
		if !ok {
			dst[event] = cloneValue(sv)
			continue
		}
		dl, dIsList := dv.([]any)
		sl, sIsList := sv.([]any)
		if !dIsList || !sIsList {
			dst[event] = cloneValue(sv)
			continue
		}
		for _, entry := range sl {
			if !containsValue(dl, entry) {
				dl = append(dl, cloneValue(entry))
			}
		}
		dst[event] = dl
	}
}

// Covers reports whether merging src into dst would leave dst unchanged.
func Covers(dst, src Document) bool {
	return Equal(Merge(src, dst), dst)
}

// RegisterHook adds a registration for h under hooks.<Event> unless an
// equivalent one exists. It returns the updated document and whether an entry
// was added. The input document is not modified.
//
// An existing entry is equivalent when one of its commands has the same
// cleaned path as h.Command, or its final path element equals h.Name.
func RegisterHook(doc Document, h Hook) (Document, bool) {
	out := cloneDocument(doc)
	if out == nil {
		out = Document{}
	}
	hooks, ok := out[HooksKey].(map[string]any)
	if !ok {
		hooks = map[string]any{}
		out[HooksKey] = hooks
	}
	entries, ok := hooks[h.Event].([]any)
	if !ok {
		entries = []any{}
	}

	for _, entry := range entries {
		if entryMatches(entry, h) {
			hooks[h.Event] = entries
			return out, false
		}
	}

	reg := map[string]any{
		"type":    h.Type,
		"command": h.Command,
	}
	if h.Timeout != nil {
		reg["timeout"] = float64(*h.Timeout)
	}
	entries = append(entries, map[string]any{
		"hooks": []any{reg},
	})
	hooks[h.Event] = entries
	return out, true
}

// UnregisterHook removes every registration under any event that matches h.
// Wrapper entries left without hooks are dropped, as are empty event lists.
func UnregisterHook(doc Document, h Hook) (Document, bool) {
	out := cloneDocument(doc)
	hooks, ok := out[HooksKey].(map[string]any)
	if !ok {
		return out, false
	}
	removed := false
	for event, v := range hooks {
		entries, ok := v.([]any)
		if !ok {
			continue
		}
		kept := entries[:0:0]
		for _, entry := range entries {
			wrapper, ok := entry.(map[string]any)
			if !ok {
				kept = append(kept, entry)
				continue
			}
			inner, ok := wrapper["hooks"].([]any)
			if !ok {
				kept = append(kept, entry)
				continue
			}
			var left []any
			for _, reg := range inner {
				if commandMatches(reg, h) {
					removed = true
					continue
				}
				left = append(left, reg)
			}
			if len(left) == len(inner) {
				kept = append(kept, entry)
			} else if len(left) > 0 {
				wrapper["hooks"] = left
				kept = append(kept, wrapper)
			}
		}
		if len(kept) == 0 {
			delete(hooks, event)
		} else {
			hooks[event] = kept
		}
	}
	return out, removed
}

func entryMatches(entry any, h Hook) bool {
	wrapper, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	inner, ok := wrapper["hooks"].([]any)
	if !ok {
		return false
	}
	for _, reg := range inner {
		if commandMatches(reg, h) {
			return true
		}
	}
	return false
}

func commandMatches(reg any, h Hook) bool {
	m, ok := reg.(map[string]any)
	if !ok {
		return false
	}
	cmd, ok := m["command"].(string)
	if !ok || cmd == "" {
		return false
	}
	if h.Command != "" && normalizeCommand(cmd) == normalizeCommand(h.Command) {
		return true
	}
	return h.Name != "" && path.Base(executable(cmd)) == h.Name
}

// executable returns the cleaned executable path of a command string, with
// Windows separators folded to '/'.
func executable(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return path.Clean(strings.ReplaceAll(fields[0], `\`, "/"))
}

// normalizeCommand cleans the executable path and collapses whitespace
// between arguments.
func normalizeCommand(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	fields[0] = executable(cmd)
	return strings.Join(fields, " ")
}

// SetOutputStyle sets the top-level outputStyle key.
func SetOutputStyle(doc Document, style string) Document {
	out := cloneDocument(doc)
	if out == nil {
		out = Document{}
	}
	out["outputStyle"] = style
	return out
}

// SetStatusLine sets the top-level statusLine key to a command entry.
func SetStatusLine(doc Document, command string) Document {
	out := cloneDocument(doc)
	if out == nil {
		out = Document{}
	}
	out["statusLine"] = map[string]any{
		"type":    "command",
		"command": command,
		"padding": float64(0),
	}
	return out
}

// OutputStyle returns the configured output style, if any.
func OutputStyle(doc Document) string {
	s, _ := doc["outputStyle"].(string)
	return s
}

// StatusLineCommand returns the configured status line command, if any.
func StatusLineCommand(doc Document) string {
	m, ok := doc["statusLine"].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["command"].(string)
	return s
}

// Parse decodes a settings document. Empty input yields an empty document.
func Parse(data []byte) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return doc, nil
}

// Equal reports whether two documents are structurally equal.
func Equal(a, b Document) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}

func cloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	return cloneValue(doc).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = cloneValue(val)
		}
		return l
	default:
		return v
	}
}

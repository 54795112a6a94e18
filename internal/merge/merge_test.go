package merge

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, s string) Document {
	t.Helper()
	d, err := Parse([]byte(s))
	require.NoError(t, err)
	return d
}

func intPtr(i int) *int { return &i }

func countCommands(t *testing.T, d Document, event, substr string) int {
	t.Helper()
	hooks, _ := d[HooksKey].(map[string]any)
	entries, _ := hooks[event].([]any)
	n := 0
	for _, e := range entries {
		inner, _ := e.(map[string]any)["hooks"].([]any)
		for _, reg := range inner {
			cmd, _ := reg.(map[string]any)["command"].(string)
			if substr != "" && strings.Contains(cmd, substr) {
				n++
			}
		}
	}
	return n
}

func TestMerge_HooksIntoUnrelatedDocument(t *testing.T) {
	src := doc(t, `{"hooks":{"UserPromptSubmit":[{"hooks":[{"type":"command","command":"~/.claude/hooks/a"}]}]}}`)
	dst := doc(t, `{"outputStyle":"default"}`)

	got := Merge(src, dst)

	assert.Equal(t, "default", got["outputStyle"])
	hooks := got[HooksKey].(map[string]any)
	require.Contains(t, hooks, "UserPromptSubmit")
	assert.Len(t, hooks["UserPromptSubmit"], 1)
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	src := doc(t, `{"a":{"b":1},"hooks":{"Stop":[{"x":1}]}}`)
	dst := doc(t, `{"a":{"c":2},"hooks":{"Stop":[{"y":2}]}}`)
	srcCopy := doc(t, `{"a":{"b":1},"hooks":{"Stop":[{"x":1}]}}`)
	dstCopy := doc(t, `{"a":{"c":2},"hooks":{"Stop":[{"y":2}]}}`)

	_ = Merge(src, dst)

	assert.Equal(t, srcCopy, src)
	assert.Equal(t, dstCopy, dst)
}

func TestMerge_Rules(t *testing.T) {
	tests := []struct {
		name string
		src  string
		dst  string
		want string
	}{
		{
			name: "absent key inserted",
			src:  `{"model":"opus"}`,
			dst:  `{"theme":"dark"}`,
			want: `{"model":"opus","theme":"dark"}`,
		},
		{
			name: "nested objects recurse",
			src:  `{"env":{"A":"1"}}`,
			dst:  `{"env":{"B":"2"}}`,
			want: `{"env":{"A":"1","B":"2"}}`,
		},
		{
			name: "scalar collision takes source",
			src:  `{"model":"opus"}`,
			dst:  `{"model":"sonnet"}`,
			want: `{"model":"opus"}`,
		},
		{
			name: "arrays outside hooks are replaced",
			src:  `{"permissions":{"allow":["Read"]}}`,
			dst:  `{"permissions":{"allow":["Edit"],"deny":["Bash"]}}`,
			want: `{"permissions":{"allow":["Read"],"deny":["Bash"]}}`,
		},
		{
			name: "type mismatch takes source",
			src:  `{"statusLine":"plain"}`,
			dst:  `{"statusLine":{"type":"command"}}`,
			want: `{"statusLine":"plain"}`,
		},
		{
			name: "hooks event appended without duplicates",
			src:  `{"hooks":{"Stop":[{"hooks":[{"command":"a"}]},{"hooks":[{"command":"b"}]}]}}`,
			dst:  `{"hooks":{"Stop":[{"hooks":[{"command":"a"}]}],"PreCompact":[{"hooks":[{"command":"p"}]}]}}`,
			want: `{"hooks":{"Stop":[{"hooks":[{"command":"a"}]},{"hooks":[{"command":"b"}]}],"PreCompact":[{"hooks":[{"command":"p"}]}]}}`,
		},
		{
			name: "hooks event absent in destination",
			src:  `{"hooks":{"SessionStart":[{"hooks":[{"command":"s"}]}]}}`,
			dst:  `{"hooks":{}}`,
			want: `{"hooks":{"SessionStart":[{"hooks":[{"command":"s"}]}]}}`,
		},
		{
			name: "non-list hook event replaced",
			src:  `{"hooks":{"Stop":[{"hooks":[{"command":"a"}]}]}}`,
			dst:  `{"hooks":{"Stop":"broken"}}`,
			want: `{"hooks":{"Stop":[{"hooks":[{"command":"a"}]}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(doc(t, tt.src), doc(t, tt.dst))
			assert.Equal(t, doc(t, tt.want), got)
		})
	}
}

func TestMerge_Idempotent(t *testing.T) {
	src := doc(t, `{"env":{"A":"1"},"hooks":{"Stop":[{"hooks":[{"type":"command","command":"x","timeout":5}]}]}}`)
	dst := doc(t, `{"model":"opus","hooks":{"Stop":[{"hooks":[{"type":"command","command":"other"}]}]}}`)

	once := Merge(src, dst)
	twice := Merge(src, once)

	assert.Equal(t, once, twice)
	assert.Len(t, twice[HooksKey].(map[string]any)["Stop"], 2)
}

func TestMerge_NilDestination(t *testing.T) {
	src := doc(t, `{"a":1}`)
	got := Merge(src, nil)
	assert.Equal(t, float64(1), got["a"])
}

func TestCovers(t *testing.T) {
	dst := doc(t, `{"a":1,"hooks":{"Stop":[{"x":1},{"y":2}]}}`)
	assert.True(t, Covers(dst, doc(t, `{"hooks":{"Stop":[{"y":2}]}}`)))
	assert.True(t, Covers(dst, doc(t, `{}`)))
	assert.False(t, Covers(dst, doc(t, `{"a":2}`)))
	assert.False(t, Covers(dst, doc(t, `{"b":1}`)))
}

func TestRegisterHook_AddsEntry(t *testing.T) {
	h := Hook{Name: "inject-guide", Event: "UserPromptSubmit", Type: "command", Command: "~/.claude/hooks/inject-guide", Timeout: intPtr(10)}

	got, added := RegisterHook(doc(t, `{"model":"opus"}`), h)

	require.True(t, added)
	assert.Equal(t, "opus", got["model"])
	entries := got[HooksKey].(map[string]any)["UserPromptSubmit"].([]any)
	require.Len(t, entries, 1)
	reg := entries[0].(map[string]any)["hooks"].([]any)[0].(map[string]any)
	assert.Equal(t, "command", reg["type"])
	assert.Equal(t, "~/.claude/hooks/inject-guide", reg["command"])
	assert.Equal(t, float64(10), reg["timeout"])
}

func TestRegisterHook_NoTimeout(t *testing.T) {
	got, _ := RegisterHook(Document{}, Hook{Name: "a", Event: "Stop", Type: "command", Command: "~/.claude/hooks/a"})
	reg := got[HooksKey].(map[string]any)["Stop"].([]any)[0].(map[string]any)["hooks"].([]any)[0].(map[string]any)
	assert.NotContains(t, reg, "timeout")
}

func TestRegisterHook_Twice(t *testing.T) {
	h := Hook{Name: "compact", Event: "PreCompact", Type: "command", Command: "~/.claude/hooks/compact"}

	once, added := RegisterHook(Document{}, h)
	require.True(t, added)
	twice, added := RegisterHook(once, h)

	assert.False(t, added)
	assert.Equal(t, 1, countCommands(t, twice, "PreCompact", "compact"))
}

func TestRegisterHook_MatchesByBinaryName(t *testing.T) {
	existing := doc(t, `{"hooks":{"Stop":[{"hooks":[{"type":"command","command":"/home/u/.claude/hooks/notify"}]}]}}`)
	_, added := RegisterHook(existing, Hook{Name: "notify", Event: "Stop", Type: "command", Command: "~/.claude/hooks/notify"})
	assert.False(t, added)
}

func TestRegisterHook_SimilarNamesAreDistinct(t *testing.T) {
	existing := doc(t, `{"hooks":{"Stop":[{"hooks":[{"type":"command","command":"~/.claude/hooks/notify-slack"}]}]}}`)
	got, added := RegisterHook(existing, Hook{Name: "notify", Event: "Stop", Type: "command", Command: "~/.claude/hooks/notify"})
	assert.True(t, added)
	assert.Len(t, got[HooksKey].(map[string]any)["Stop"], 2)
}

func TestRegisterHook_ReplacesMalformedHooks(t *testing.T) {
	got, added := RegisterHook(doc(t, `{"hooks":"oops"}`), Hook{Name: "a", Event: "Stop", Type: "command", Command: "a"})
	assert.True(t, added)
	assert.IsType(t, map[string]any{}, got[HooksKey])
}

func TestUnregisterHook(t *testing.T) {
	existing := doc(t, `{"hooks":{
		"Stop":[{"hooks":[{"command":"~/.claude/hooks/a"},{"command":"keep"}]}],
		"PreCompact":[{"hooks":[{"command":"~/.claude/hooks/a"}]}]
	}}`)

	got, removed := UnregisterHook(existing, Hook{Name: "a", Command: "~/.claude/hooks/a"})

	require.True(t, removed)
	hooks := got[HooksKey].(map[string]any)
	assert.NotContains(t, hooks, "PreCompact")
	stop := hooks["Stop"].([]any)
	require.Len(t, stop, 1)
	assert.Len(t, stop[0].(map[string]any)["hooks"], 1)
}

func TestUnregisterHook_NoHooks(t *testing.T) {
	_, removed := UnregisterHook(doc(t, `{"model":"x"}`), Hook{Name: "a"})
	assert.False(t, removed)
}

func TestSetOutputStyleAndStatusLine(t *testing.T) {
	d := SetOutputStyle(doc(t, `{"outputStyle":"old","model":"opus"}`), "explanatory")
	assert.Equal(t, "explanatory", OutputStyle(d))
	assert.Equal(t, "opus", d["model"])

	d = SetStatusLine(d, "~/.claude/statusline/line.sh")
	assert.Equal(t, "~/.claude/statusline/line.sh", StatusLineCommand(d))
	data, err := json.Marshal(d["statusLine"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"command","command":"~/.claude/statusline/line.sh","padding":0}`, string(data))
}

func TestParse(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		d, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, d)
	})
	t.Run("array root", func(t *testing.T) {
		_, err := Parse([]byte(`[1,2]`))
		assert.ErrorIs(t, err, ErrNotObject)
	})
	t.Run("malformed", func(t *testing.T) {
		_, err := Parse([]byte(`{"a":`))
		assert.Error(t, err)
	})
}

func TestRegisterHook_ArgumentsDistinguishCommands(t *testing.T) {
	existing := doc(t, `{"hooks":{"PostToolUse":[{"hooks":[{"type":"command","command":"npx  eslint --fix"}]}]}}`)

	_, added := RegisterHook(existing, Hook{Name: "eslint", Event: "PostToolUse", Type: "command", Command: "npx eslint --fix"})
	assert.False(t, added, "whitespace differences are ignored")

	got, added := RegisterHook(existing, Hook{Name: "prettier", Event: "PostToolUse", Type: "command", Command: "npx prettier --write"})
	assert.True(t, added)
	assert.Len(t, got[HooksKey].(map[string]any)["PostToolUse"], 2)
}

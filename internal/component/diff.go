package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ruminaider/claude-installer/internal/claudecode"
	"github.com/ruminaider/claude-installer/internal/merge"
)

// Diff renders what installing c would change at the destination as a unified
// diff. The settings document is compared against its merged result and
// settings-only hooks against the document after registration.
func Diff(c Component, l Layout) (string, error) {
	var (
		before, after []byte
		err           error
	)
	from, to := c.DestPath, c.SourcePath
	switch {
	case c.IsSettings():
		before, after, err = settingsDiffInputs(c)
	case c.Kind == Hooks && c.DestPath == "":
		from, to = l.SettingsPath(), l.SettingsPath()
		before, after, err = hookDiffInputs(c, l)
	default:
		after, err = os.ReadFile(c.SourcePath)
		if err == nil {
			before, err = readOptional(c.DestPath)
		}
	}
	if err != nil {
		return "", err
	}
	if before == nil {
		from = "/dev/null"
	}

	if isBinary(before) || isBinary(after) {
		if bytes.Equal(before, after) {
			return "", nil
		}
		return fmt.Sprintf("Binary files %s and %s differ\n", from, to), nil
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: from,
		ToFile:   to,
		Context:  3,
	})
}

func settingsDiffInputs(c Component) ([]byte, []byte, error) {
	data, err := os.ReadFile(c.SourcePath)
	if err != nil {
		return nil, nil, err
	}
	src, err := merge.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", c.SourcePath, err)
	}
	before, err := readOptional(c.DestPath)
	if err != nil {
		return nil, nil, err
	}
	dst, err := claudecode.ReadSettingsFile(c.DestPath)
	if err != nil {
		return nil, nil, err
	}
	after, err := marshalDoc(merge.Merge(src, dst))
	if err != nil {
		return nil, nil, err
	}
	if len(before) > 0 {
		if before, err = marshalDoc(dst); err != nil {
			return nil, nil, err
		}
	}
	return before, after, nil
}

func hookDiffInputs(c Component, l Layout) ([]byte, []byte, error) {
	h, ok := c.MergeHook()
	if !ok {
		return nil, nil, fmt.Errorf("%s has no hook manifest", c.DisplayName())
	}
	dst, err := claudecode.ReadSettingsFile(l.SettingsPath())
	if err != nil {
		return nil, nil, err
	}
	next, _ := merge.RegisterHook(dst, h)
	before, err := marshalDoc(dst)
	if err != nil {
		return nil, nil, err
	}
	after, err := marshalDoc(next)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func marshalDoc(doc merge.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func isBinary(data []byte) bool {
	n := len(data)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}

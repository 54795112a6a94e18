package component

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ruminaider/claude-installer/internal/claudecode"
	"github.com/ruminaider/claude-installer/internal/frontmatter"
	"github.com/ruminaider/claude-installer/internal/merge"
)

// SettingsName is the config artifact that is merged instead of copied.
const SettingsName = claudecode.SettingsFile

// HookManifest is the manifest file name inside each hook directory.
const HookManifest = "hook.yaml"

// Layout locates the source bundle and the destination config directory.
type Layout struct {
	Source string
	Dest   string
	// DestDirs overrides the destination directory of a kind, relative to
	// Dest. ConfigFile always installs into Dest itself.
	DestDirs map[Kind]string
}

// DestRoot returns the absolute destination directory for kind.
func (l Layout) DestRoot(kind Kind) string {
	if kind == ConfigFile {
		return l.Dest
	}
	if dir, ok := l.DestDirs[kind]; ok {
		return filepath.Join(l.Dest, dir)
	}
	return filepath.Join(l.Dest, kind.Dir())
}

// SourceRoot returns the absolute source directory for kind.
func (l Layout) SourceRoot(kind Kind) string {
	return filepath.Join(l.Source, kind.Dir())
}

// SettingsPath returns the destination settings document.
func (l Layout) SettingsPath() string {
	return filepath.Join(l.Dest, SettingsName)
}

// Scan produces every component of the bundle, ordered by kind and then by
// name. Unreadable artifacts are skipped and logged; only a missing source
// root is an error.
func Scan(l Layout, logger *slog.Logger) ([]Component, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	info, err := os.Stat(l.Source)
	if err != nil {
		return nil, fmt.Errorf("reading source bundle: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source bundle %s is not a directory", l.Source)
	}

	s := &scanner{layout: l, logger: logger}
	var all []Component
	for _, kind := range Kinds() {
		var comps []Component
		if kind == Hooks {
			comps = s.scanHooks()
		} else {
			comps = s.scanFiles(kind)
		}
		all = append(all, comps...)
	}
	logger.Debug("scanned components", slog.String("source", l.Source), slog.Int("count", len(all)))
	return all, nil
}

type scanner struct {
	layout   Layout
	logger   *slog.Logger
	settings merge.Document
	loaded   bool
}

func (s *scanner) skip(path string, err error) {
	s.logger.Warn("skipping artifact", slog.String("path", path), slog.String("error", err.Error()))
}

// destSettings lazily reads the destination settings document. A malformed
// document reads as empty.
func (s *scanner) destSettings() merge.Document {
	if !s.loaded {
		s.loaded = true
		doc, err := claudecode.ReadSettingsFile(s.layout.SettingsPath())
		if err != nil {
			s.skip(s.layout.SettingsPath(), err)
			doc = merge.Document{}
		}
		s.settings = doc
	}
	return s.settings
}

func (s *scanner) scanFiles(kind Kind) []Component {
	root := s.layout.SourceRoot(kind)
	files, err := walkFiles(root)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.skip(root, err)
		}
		return nil
	}

	var comps []Component
	for _, rel := range files {
		if kind.markdownOnly() && !strings.EqualFold(filepath.Ext(rel), ".md") {
			continue
		}
		src := filepath.Join(root, rel)
		dst := filepath.Join(s.layout.DestRoot(kind), rel)
		name := filepath.ToSlash(rel)

		var (
			status Status
			err    error
		)
		if kind == ConfigFile && name == SettingsName {
			status, err = s.settingsStatus(src, dst)
		} else {
			status, err = fileStatus(src, dst)
		}
		if err != nil {
			s.skip(src, err)
			continue
		}

		c := newComponent(kind, name, src, dst, status)
		if strings.EqualFold(filepath.Ext(rel), ".md") {
			if data, err := os.ReadFile(src); err == nil {
				c.Description = frontmatter.Description(string(data))
			}
		}
		comps = append(comps, c)
	}
	return comps
}

// settingsStatus classifies the bundle settings document by whether merging
// it would change the destination, never by raw bytes.
func (s *scanner) settingsStatus(src, dst string) (Status, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return New, err
	}
	srcDoc, err := merge.Parse(data)
	if err != nil {
		return New, fmt.Errorf("parsing %s: %w", src, err)
	}
	if _, err := os.Stat(dst); err != nil {
		if len(srcDoc) == 0 {
			return Unchanged, nil
		}
		return New, nil
	}
	dstDoc, err := claudecode.ReadSettingsFile(dst)
	if err != nil {
		return Modified, nil
	}
	if merge.Covers(dstDoc, srcDoc) {
		return Unchanged, nil
	}
	return Modified, nil
}

func (s *scanner) scanHooks() []Component {
	root := s.layout.SourceRoot(Hooks)
	entries, err := readDirFollow(root)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.skip(root, err)
		}
		return nil
	}

	var comps []Component
	for _, dir := range entries {
		if !dir.isDir {
			continue
		}
		hookDir := filepath.Join(root, dir.name)
		cfg, err := readHookConfig(filepath.Join(hookDir, HookManifest))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.skip(hookDir, err)
			}
			continue
		}

		if bin, ok := findHookBinary(hookDir, cfg.Name); ok {
			base := filepath.Base(bin)
			dst := filepath.Join(s.layout.DestRoot(Hooks), base)
			status, err := fileStatus(bin, dst)
			if err != nil {
				s.skip(bin, err)
				continue
			}
			c := newComponent(Hooks, base, bin, dst, status)
			c.Hook = cfg
			c.Description = cfg.Event
			// An identical binary still needs its settings registration.
			if status == Unchanged {
				if h, ok := c.MergeHook(); ok {
					if _, added := merge.RegisterHook(s.destSettings(), h); added {
						c.Status = Modified
						c.Selected = true
					}
				}
			}
			comps = append(comps, c)
			continue
		}

		if cfg.Command == "" {
			s.logger.Debug("hook has no binary", slog.String("hook", cfg.Name))
			continue
		}
		c := newComponent(Hooks, cfg.Name, filepath.Join(hookDir, HookManifest), "", New)
		c.Hook = cfg
		c.Description = cfg.Event
		if h, ok := c.MergeHook(); ok {
			if _, added := merge.RegisterHook(s.destSettings(), h); !added {
				c.Status = Managed
			}
		}
		comps = append(comps, c)
	}
	return comps
}

func readHookConfig(path string) (*HookConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg HookConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Name == "" || cfg.Event == "" {
		return nil, fmt.Errorf("%s: name and event are required", path)
	}
	if cfg.Type == "" {
		cfg.Type = "command"
	}
	return &cfg, nil
}

// hookBinaryCandidates lists binary file names for a hook on goos, most
// specific first.
func hookBinaryCandidates(name, goos string) []string {
	var platform string
	switch goos {
	case "windows":
		platform = name + ".exe"
	case "darwin":
		platform = name + "_macos"
	default:
		platform = name + "_linux"
	}
	return []string{platform, name, name + ".sh"}
}

func findHookBinary(dir, name string) (string, bool) {
	for _, candidate := range hookBinaryCandidates(name, runtime.GOOS) {
		p := filepath.Join(dir, candidate)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// fileStatus compares a source file with its destination byte for byte.
func fileStatus(src, dst string) (Status, error) {
	srcData, err := os.ReadFile(src)
	if err != nil {
		return New, err
	}
	dstData, err := os.ReadFile(dst)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New, nil
		}
		return New, fmt.Errorf("reading %s: %w", dst, err)
	}
	if bytes.Equal(srcData, dstData) {
		return Unchanged, nil
	}
	return Modified, nil
}

type dirEntry struct {
	name  string
	isDir bool
}

// readDirFollow lists dir, resolving symlinks to their targets. Broken links
// and hidden entries are omitted.
func readDirFollow(dir string) ([]dirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, dirEntry{name: e.Name(), isDir: info.IsDir()})
	}
	return out, nil
}

// walkFiles returns the paths of all regular files below root, relative to
// root and sorted. Directory symlinks are followed; a directory already
// visited through another path is not walked again.
func walkFiles(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	visited := map[string]bool{}
	var files []string

	var walk func(rel string) error
	walk = func(rel string) error {
		abs := filepath.Join(root, rel)
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return err
		}
		if visited[resolved] {
			return nil
		}
		visited[resolved] = true

		entries, err := readDirFollow(abs)
		if err != nil {
			return err
		}
		for _, e := range entries {
			child := filepath.Join(rel, e.name)
			if e.isDir {
				// unreadable subdirectories are skipped
				_ = walk(child)
				continue
			}
			files = append(files, child)
		}
		return nil
	}

	if err := walk(""); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

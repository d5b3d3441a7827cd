// Package config discovers and parses zls.json, the server's configuration
// file, per spec.md §6.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// FileName is the configuration file's fixed name.
const FileName = "zls.json"

// Config holds the recognized zls.json fields, with spec.md §6's defaults
// applied for anything absent from the file.
type Config struct {
	ZigExePath        string `json:"zig_exe_path"`
	ZigLibPath        string `json:"zig_lib_path"`
	BuildRunnerPath   string `json:"build_runner_path"`
	WarnStyle         bool   `json:"warn_style"`
	EnableSemanticTok bool   `json:"enable_semantic_tokens"`
	EnableSnippets    bool   `json:"enable_snippets"`
	OperatorCompletes bool   `json:"operator_completions"`
	SkipStdReferences bool   `json:"skip_std_references"`
}

// Default returns the configuration with every spec.md §6 default applied.
func Default() Config {
	return Config{
		EnableSemanticTok: true,
		EnableSnippets:    false,
		OperatorCompletes: true,
		SkipStdReferences: false,
	}
}

// unmarshalTarget mirrors Config but with pointer fields, so Parse can tell
// "absent from the file" apart from "explicitly false/empty", and only
// overwrite defaults for fields the file actually sets.
type unmarshalTarget struct {
	ZigExePath        *string `json:"zig_exe_path"`
	ZigLibPath        *string `json:"zig_lib_path"`
	BuildRunnerPath   *string `json:"build_runner_path"`
	WarnStyle         *bool   `json:"warn_style"`
	EnableSemanticTok *bool   `json:"enable_semantic_tokens"`
	EnableSnippets    *bool   `json:"enable_snippets"`
	OperatorCompletes *bool   `json:"operator_completions"`
	SkipStdReferences *bool   `json:"skip_std_references"`
}

// Parse decodes zls.json content (tolerating `//`/`/* */` comments and
// trailing commas, per SPEC_FULL.md's jsonc wiring) on top of Default().
func Parse(data []byte) (Config, error) {
	cfg := Default()

	clean := jsonc.ToJSON(data)

	var t unmarshalTarget
	if err := json.Unmarshal(clean, &t); err != nil {
		return Config{}, fmt.Errorf("parse zls.json: %w", err)
	}

	if t.ZigExePath != nil {
		cfg.ZigExePath = *t.ZigExePath
	}
	if t.ZigLibPath != nil {
		cfg.ZigLibPath = *t.ZigLibPath
	}
	if t.BuildRunnerPath != nil {
		cfg.BuildRunnerPath = *t.BuildRunnerPath
	}
	if t.WarnStyle != nil {
		cfg.WarnStyle = *t.WarnStyle
	}
	if t.EnableSemanticTok != nil {
		cfg.EnableSemanticTok = *t.EnableSemanticTok
	}
	if t.EnableSnippets != nil {
		cfg.EnableSnippets = *t.EnableSnippets
	}
	if t.OperatorCompletes != nil {
		cfg.OperatorCompletes = *t.OperatorCompletes
	}
	if t.SkipStdReferences != nil {
		cfg.SkipStdReferences = *t.SkipStdReferences
	}

	return cfg, nil
}

// Discover searches for zls.json in (a) dir (the platform's local config
// directory, as resolved by the caller) then (b) the directory holding the
// running executable, per spec.md §6. It returns Default() if neither
// candidate exists; a read or parse error on a candidate that does exist is
// returned to the caller.
func Discover(dir string) (Config, string, error) {
	candidates := []string{}
	if dir != "" {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), FileName))
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, "", fmt.Errorf("read %s: %w", path, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return Config{}, "", fmt.Errorf("%s: %w", path, err)
		}
		return cfg, path, nil
	}

	return Default(), "", nil
}

// ResolveZigExePath returns cfg.ZigExePath if it is set and absolute;
// otherwise it searches PATH for "zig", per spec.md §6's "Environment" note.
func ResolveZigExePath(cfg Config) (string, error) {
	if cfg.ZigExePath != "" && filepath.IsAbs(cfg.ZigExePath) {
		return cfg.ZigExePath, nil
	}
	path, err := exec.LookPath("zig")
	if err != nil {
		return "", fmt.Errorf("resolve zig executable: %w", err)
	}
	return path, nil
}

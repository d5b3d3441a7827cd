package store

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// BuildFile is a detected build script alongside a source tree, per
// spec.md §3. Packages maps a package name to the URI of its root source
// file, as discovered by running the target toolchain's "describe build"
// command.
type BuildFile struct {
	URI      string
	Packages map[string]string
}

// excludedDirGlobs are directory-name patterns skipped while searching a
// directory subtree for the build file that owns it (spec.md §4.5's
// "longest wins" prefix match never needs to look inside these).
var excludedDirGlobs = compileExcludedDirGlobs(".git", "zig-cache", ".zig-cache", "zig-out", "node_modules", "vendor")

func compileExcludedDirGlobs(patterns ...string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

// isExcludedDir reports whether name matches one of excludedDirGlobs.
func isExcludedDir(name string) bool {
	for _, g := range excludedDirGlobs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// DescribeBuildFunc runs the toolchain's "describe build" command against
// the build script at path and parses its JSON result into a package-name
// to root-source-path map. The Store calls this whenever a handle is
// recognized as a build file (on open and on every save).
type DescribeBuildFunc func(path string) (map[string]string, error)

// RunDescribeBuild invokes "<zigExePath> build [--build-runner
// <buildRunnerPath>] --describe" (spec.md §4.5; the --build-runner flag is
// passed only when buildRunnerPath is non-empty) against the build file at buildFilePath, in the
// directory containing it, and parses the JSON object it prints on
// stdout.
func RunDescribeBuild(zigExePath, buildRunnerPath string) DescribeBuildFunc {
	return func(buildFilePath string) (map[string]string, error) {
		if zigExePath == "" {
			return nil, fmt.Errorf("describe build: no zig executable configured")
		}
		args := []string{"build"}
		if buildRunnerPath != "" {
			args = append(args, "--build-runner", buildRunnerPath)
		}
		args = append(args, "--describe")

		cmd := exec.Command(zigExePath, args...) //nolint:gosec // toolchain path is operator-configured
		cmd.Dir = filepath.Dir(buildFilePath)
		out, err := cmd.Output()
		if err != nil {
			return nil, fmt.Errorf("describe build: %w", err)
		}

		var raw map[string]string
		if err := json.Unmarshal(out, &raw); err != nil {
			return nil, fmt.Errorf("describe build: parse output: %w", err)
		}
		return raw, nil
	}
}

// longestBuildFilePrefixMatch picks, among buildFileDirs, the one whose
// directory is the longest prefix of sourceDir (spec.md §4.5's "longest
// wins"). Candidates within an excluded directory name are skipped.
func longestBuildFilePrefixMatch(sourceDir string, buildFileDirs map[string]string) (string, bool) {
	sourceDir = filepath.ToSlash(sourceDir)

	var bestDir, bestURI string
	for dir, uri := range buildFileDirs {
		slashDir := filepath.ToSlash(dir)
		if !strings.HasPrefix(sourceDir, slashDir) {
			continue
		}
		if pathHasExcludedSegment(sourceDir[len(slashDir):]) {
			continue
		}
		if len(slashDir) > len(bestDir) {
			bestDir, bestURI = slashDir, uri
		}
	}
	return bestURI, bestDir != ""
}

func pathHasExcludedSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if isExcludedDir(seg) {
			return true
		}
	}
	return false
}

// sortedBuildFileDirs returns the directories of m's keys sorted longest
// first, purely as a deterministic iteration aid for callers that want
// stable logging; longestBuildFilePrefixMatch itself does not depend on
// order.
func sortedBuildFileDirs(m map[string]string) []string {
	dirs := make([]string, 0, len(m))
	for d := range m {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	return dirs
}

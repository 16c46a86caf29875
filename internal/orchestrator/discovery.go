package orchestrator

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// defaultExclusions is the 24-pattern default exclusion list: VCS metadata,
// dependency caches, lockfiles, binary media, and minified bundles,
// generalized from the teacher's discovery.go ignore-pattern defaults
// (node_modules/**, vendor/**, .git/**, ...).
var defaultExclusions = []string{
	".git/**", ".svn/**", ".hg/**",
	"node_modules/**", "vendor/**", "target/**", "dist/**", "build/**",
	".venv/**", "venv/**", "__pycache__/**", ".mypy_cache/**", ".pytest_cache/**",
	"*.lock", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "Cargo.lock", "go.sum",
	"*.min.js", "*.min.css",
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.ico", "*.woff", "*.woff2", "*.ttf",
	"*.zip", "*.tar", "*.gz", "*.exe", "*.dll", "*.so", "*.dylib",
}

// discoveredFile is one file discovery turned up, in deterministic
// (sorted-path) order.
type discoveredFile struct {
	AbsPath string
	RelPath string
}

// discoverer walks a root directory applying the default exclusion list
// plus caller-supplied include/exclude globs, mirroring the teacher's
// FileDiscovery's glob-compile-once-then-walk shape.
type discoverer struct {
	excludes []glob.Glob
	includes []glob.Glob
}

func newDiscoverer(userExcludes, userIncludes []string) (*discoverer, error) {
	d := &discoverer{}
	for _, pattern := range append(append([]string{}, defaultExclusions...), userExcludes...) {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.excludes = append(d.excludes, g)
	}
	for _, pattern := range userIncludes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.includes = append(d.includes, g)
	}
	return d, nil
}

// Discover walks root and returns files in sorted relative-path order,
// satisfying the ordering invariant (P2) the learn flow depends on.
func (d *discoverer) Discover(root string) ([]discoveredFile, error) {
	var files []discoveredFile

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if d.matchesAny(d.excludes, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.matchesAny(d.excludes, rel) {
			return nil
		}
		if len(d.includes) > 0 && !d.matchesAny(d.includes, rel) {
			return nil
		}

		files = append(files, discoveredFile{AbsPath: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func (d *discoverer) matchesAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
		// directory-suffix trick: "vendor/**" should also match the bare
		// directory name "vendor" when walking hits the dir itself.
		if strings.HasSuffix(path, "/") && g.Match(strings.TrimSuffix(path, "/")) {
			return true
		}
	}
	return false
}

// Package workspace implements base configuration and on-disk layout
// (C10): the workspace-global config (spf13/viper, env-overridable), the
// per-base config.yaml round-trip (gopkg.in/yaml.v3), and the filesystem
// conventions every other component's paths are derived from. Grounded on
// the teacher's internal/config/{config,loader,global,validate}.go.
package workspace

import "path/filepath"

// Layout knows every path under a workspace root. Nothing here touches the
// filesystem; it's pure path arithmetic so other packages can construct
// paths without importing os.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout { return Layout{Root: root} }

func (l Layout) GlobalConfigPath() string { return filepath.Join(l.Root, "config.yaml") }

func (l Layout) KnowledgeDir() string { return filepath.Join(l.Root, "knowledge") }

func (l Layout) BaseDir(base string) string { return filepath.Join(l.KnowledgeDir(), base) }

func (l Layout) BaseConfigPath(base string) string { return filepath.Join(l.BaseDir(base), "config.yaml") }

func (l Layout) SourcesPath(base string) string { return filepath.Join(l.BaseDir(base), "sources.jsonl") }

func (l Layout) StatsPath(base string) string { return filepath.Join(l.BaseDir(base), "stats.json") }

func (l Layout) IndexDir(base string) string { return filepath.Join(l.BaseDir(base), "index") }

func (l Layout) IndexDBPath(base string) string { return filepath.Join(l.IndexDir(base), "index.db") }

func (l Layout) PromptsDir() string { return filepath.Join(l.Root, "prompts") }

func (l Layout) TasksDir() string { return filepath.Join(l.Root, "tasks") }

func (l Layout) OperationStatsPath() string { return filepath.Join(l.Root, "operation", "stats.json") }

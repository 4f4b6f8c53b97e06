package cli

import (
	"path/filepath"
	"strings"

	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/scan"
)

// defaultRules maps scanned languages to the ecosystems their code can
// pull dependencies from. Used for closest-subproject relevance on diff
// scans.
var defaultRules = []scan.Rule{
	{ID: "javascript", Languages: []string{"javascript", "typescript"}, Ecosystems: []deps.Ecosystem{deps.EcosystemNpm}},
	{ID: "python", Languages: []string{"python"}, Ecosystems: []deps.Ecosystem{deps.EcosystemPypi}},
	{ID: "go", Languages: []string{"go"}, Ecosystems: []deps.Ecosystem{deps.EcosystemGomod}},
	{ID: "rust", Languages: []string{"rust"}, Ecosystems: []deps.Ecosystem{deps.EcosystemCargo}},
	{ID: "ruby", Languages: []string{"ruby"}, Ecosystems: []deps.Ecosystem{deps.EcosystemGem}},
	{ID: "jvm", Languages: []string{"java", "kotlin", "scala"}, Ecosystems: []deps.Ecosystem{deps.EcosystemMaven}},
	{ID: "php", Languages: []string{"php"}, Ecosystems: []deps.Ecosystem{deps.EcosystemComposer}},
	{ID: "csharp", Languages: []string{"csharp"}, Ecosystems: []deps.Ecosystem{deps.EcosystemNuget}},
	{ID: "dart", Languages: []string{"dart"}, Ecosystems: []deps.Ecosystem{deps.EcosystemPub}},
	{ID: "swift", Languages: []string{"swift"}, Ecosystems: []deps.Ecosystem{deps.EcosystemSwiftPM}},
	{ID: "elixir", Languages: []string{"elixir"}, Ecosystems: []deps.Ecosystem{deps.EcosystemHex}},
}

// languageByExtension classifies code files for relevance filtering.
var languageByExtension = map[string]string{
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".py":    "python",
	".pyi":   "python",
	".go":    "go",
	".rs":    "rust",
	".rb":    "ruby",
	".java":  "java",
	".kt":    "kotlin",
	".scala": "scala",
	".php":   "php",
	".cs":    "csharp",
	".dart":  "dart",
	".swift": "swift",
	".ex":    "elixir",
	".exs":   "elixir",
}

// codeTargets builds the per-language view of the changed files.
func codeTargets(changed []string) scan.CodeTargets {
	byLang := make(map[string][]string)
	for _, p := range changed {
		ext := strings.ToLower(filepath.Ext(p))
		if lang, ok := languageByExtension[ext]; ok {
			byLang[lang] = append(byLang[lang], p)
		}
	}
	return func(language string) []string { return byLang[language] }
}

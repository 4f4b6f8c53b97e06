package resolve

import (
	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/parsers/golang"
	"github.com/depscope/depscope/pkg/parsers/javascript"
	"github.com/depscope/depscope/pkg/parsers/python"
	"github.com/depscope/depscope/pkg/parsers/rust"
)

// ParserFunc parses one lockfile into a flat dependency list. The manifest
// path may be empty. Parsers record per-entry failures as ParseErrors and
// keep going; they return an error value for nothing short of an unreadable
// file, and even that is reported through the ParseError list.
type ParserFunc func(lockfilePath, manifestPath string) ([]deps.FoundDependency, []deps.ParseError)

// DefaultParsers returns the parser registry keyed by lockfile kind. A nil
// value marks a kind we recognize and track but cannot parse in-process
// yet; such kinds are distinct, for telemetry, from kinds absent entirely.
func DefaultParsers() map[deps.LockfileKind]ParserFunc {
	return map[deps.LockfileKind]ParserFunc{
		deps.LockfileRequirementsTxt:   python.ParseRequirements,
		deps.LockfilePoetryLock:        python.ParsePoetryLock,
		deps.LockfilePipfileLock:       nil,
		deps.LockfileUvLock:            nil,
		deps.LockfilePackageLockJson:   javascript.ParsePackageLock,
		deps.LockfilePnpmLock:          javascript.ParsePnpmLock,
		deps.LockfileYarnLock:          nil,
		deps.LockfileCargoLock:         rust.ParseCargoLock,
		deps.LockfileGoMod:             golang.ParseGoMod,
		deps.LockfileGemfileLock:       nil,
		deps.LockfileComposerLock:      nil,
		deps.LockfileMavenDepTree:      nil,
		deps.LockfileGradleLockfile:    nil,
		deps.LockfileNugetPackagesLock: nil,
		deps.LockfilePubspecLock:       nil,
		deps.LockfileSwiftPackageRes:   nil,
		deps.LockfileMixLock:           nil,
		deps.LockfileConanLock:         nil,
	}
}

// kindPair is a (manifest kind, lockfile kind) combination; the zero value
// of either side means "absent".
type kindPair struct {
	manifest deps.ManifestKind
	lockfile deps.LockfileKind
}

// delegatedParsingKinds lists the pairs whose static parsing is delegated
// to the engine under path-to-transitivity, because the in-process grammar
// cannot recover child relationships. The result is still tagged as
// lockfile parsing: no download or code execution happens.
var delegatedParsingKinds = map[kindPair]bool{
	{manifest: deps.ManifestPackageJson, lockfile: deps.LockfilePackageLockJson}: true,
	{manifest: deps.ManifestCsproj, lockfile: deps.LockfileNugetPackagesLock}:    true,
}

// dynamicResolutionKinds lists the pairs eligible for true dynamic
// resolution when the policy flag allows it. Pairs with no lockfile cover
// the manifest-only case.
var dynamicResolutionKinds = map[kindPair]bool{
	{manifest: deps.ManifestPomXml}:                                                 true,
	{manifest: deps.ManifestBuildGradle}:                                            true,
	{manifest: deps.ManifestBuildGradle, lockfile: deps.LockfileGradleLockfile}:     true,
	{manifest: deps.ManifestCsproj}:                                                 true,
	{manifest: deps.ManifestRequirementsIn, lockfile: deps.LockfileRequirementsTxt}: true,
	{lockfile: deps.LockfileRequirementsTxt}:                                        true,
}

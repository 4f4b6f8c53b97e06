package deps

// Ecosystem identifies a package-manager universe (one per language/tool).
// The empty string means the package manager is recognized but not supported
// for resolution; such subprojects are kept for telemetry only.
type Ecosystem string

const (
	EcosystemNpm      Ecosystem = "npm"
	EcosystemPypi     Ecosystem = "pypi"
	EcosystemGem      Ecosystem = "gem"
	EcosystemGomod    Ecosystem = "gomod"
	EcosystemCargo    Ecosystem = "cargo"
	EcosystemMaven    Ecosystem = "maven"
	EcosystemComposer Ecosystem = "composer"
	EcosystemNuget    Ecosystem = "nuget"
	EcosystemPub      Ecosystem = "pub"
	EcosystemSwiftPM  Ecosystem = "swiftpm"
	EcosystemHex      Ecosystem = "hex"

	// EcosystemNone marks package managers we identify for tracking purposes
	// but cannot resolve (e.g. Conan).
	EcosystemNone Ecosystem = ""
)

// ecosystemByManifestKind maps manifest kinds to the ecosystem they belong
// to. Kinds absent from the map (or mapped to EcosystemNone) have no
// resolvable ecosystem.
var ecosystemByManifestKind = map[ManifestKind]Ecosystem{
	ManifestPackageJson:    EcosystemNpm,
	ManifestPyprojectToml:  EcosystemPypi,
	ManifestPipfile:        EcosystemPypi,
	ManifestRequirementsIn: EcosystemPypi,
	ManifestSetupPy:        EcosystemPypi,
	ManifestGemfile:        EcosystemGem,
	ManifestGoModFile:      EcosystemGomod,
	ManifestCargoToml:      EcosystemCargo,
	ManifestPomXml:         EcosystemMaven,
	ManifestBuildGradle:    EcosystemMaven,
	ManifestComposerJson:   EcosystemComposer,
	ManifestCsproj:         EcosystemNuget,
	ManifestPubspecYaml:    EcosystemPub,
	ManifestPackageSwift:   EcosystemSwiftPM,
	ManifestMixExs:         EcosystemHex,
	ManifestConanfile:      EcosystemNone,
	ManifestConanfileTxt:   EcosystemNone,
}

// ecosystemByLockfileKind maps lockfile kinds to their ecosystem.
var ecosystemByLockfileKind = map[LockfileKind]Ecosystem{
	LockfilePackageLockJson:   EcosystemNpm,
	LockfileYarnLock:          EcosystemNpm,
	LockfilePnpmLock:          EcosystemNpm,
	LockfilePipfileLock:       EcosystemPypi,
	LockfileRequirementsTxt:   EcosystemPypi,
	LockfilePoetryLock:        EcosystemPypi,
	LockfileUvLock:            EcosystemPypi,
	LockfileGemfileLock:       EcosystemGem,
	LockfileGoMod:             EcosystemGomod,
	LockfileCargoLock:         EcosystemCargo,
	LockfileMavenDepTree:      EcosystemMaven,
	LockfileGradleLockfile:    EcosystemMaven,
	LockfileComposerLock:      EcosystemComposer,
	LockfileNugetPackagesLock: EcosystemNuget,
	LockfilePubspecLock:       EcosystemPub,
	LockfileSwiftPackageRes:   EcosystemSwiftPM,
	LockfileMixLock:           EcosystemHex,
	LockfileConanLock:         EcosystemNone,
}

// SourceEcosystem returns the ecosystem a dependency source belongs to,
// derived from its manifest or lockfile kind. Multi-lockfile sources take
// the ecosystem of their first child. Returns EcosystemNone for kinds that
// are tracked but unsupported.
func SourceEcosystem(src Source) Ecosystem {
	switch s := src.(type) {
	case ManifestOnly:
		return ecosystemByManifestKind[s.Manifest.Kind]
	case LockfileOnly:
		return ecosystemByLockfileKind[s.Lockfile.Kind]
	case ManifestLockfile:
		return ecosystemByLockfileKind[s.Lockfile.Kind]
	case MultiLockfile:
		if len(s.Sources) > 0 {
			return SourceEcosystem(s.Sources[0])
		}
	}
	return EcosystemNone
}

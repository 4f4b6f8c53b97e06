package deps

// ManifestKind identifies the format of a manifest file: a file that
// declares intended dependencies as unresolved constraints.
type ManifestKind string

const (
	ManifestPackageJson    ManifestKind = "package_json"
	ManifestPyprojectToml  ManifestKind = "pyproject_toml"
	ManifestPipfile        ManifestKind = "pipfile"
	ManifestRequirementsIn ManifestKind = "requirements_in"
	ManifestSetupPy        ManifestKind = "setup_py"
	ManifestGemfile        ManifestKind = "gemfile"
	ManifestGoModFile      ManifestKind = "go_mod"
	ManifestCargoToml      ManifestKind = "cargo_toml"
	ManifestPomXml         ManifestKind = "pom_xml"
	ManifestBuildGradle    ManifestKind = "build_gradle"
	ManifestComposerJson   ManifestKind = "composer_json"
	ManifestCsproj         ManifestKind = "csproj"
	ManifestPubspecYaml    ManifestKind = "pubspec_yaml"
	ManifestPackageSwift   ManifestKind = "package_swift"
	ManifestMixExs         ManifestKind = "mix_exs"
	ManifestConanfile      ManifestKind = "conanfile_py"
	ManifestConanfileTxt   ManifestKind = "conanfile_txt"
)

// LockfileKind identifies the format of a lockfile: a file recording a
// pinned, previously resolved dependency set.
type LockfileKind string

const (
	LockfilePackageLockJson   LockfileKind = "package_lock_json"
	LockfileYarnLock          LockfileKind = "yarn_lock"
	LockfilePnpmLock          LockfileKind = "pnpm_lock"
	LockfilePipfileLock       LockfileKind = "pipfile_lock"
	LockfileRequirementsTxt   LockfileKind = "requirements_txt"
	LockfilePoetryLock        LockfileKind = "poetry_lock"
	LockfileUvLock            LockfileKind = "uv_lock"
	LockfileGemfileLock       LockfileKind = "gemfile_lock"
	LockfileGoMod             LockfileKind = "go_mod"
	LockfileCargoLock         LockfileKind = "cargo_lock"
	LockfileMavenDepTree      LockfileKind = "maven_dep_tree"
	LockfileGradleLockfile    LockfileKind = "gradle_lockfile"
	LockfileComposerLock      LockfileKind = "composer_lock"
	LockfileNugetPackagesLock LockfileKind = "nuget_packages_lock_json"
	LockfilePubspecLock       LockfileKind = "pubspec_lock"
	LockfileSwiftPackageRes   LockfileKind = "swift_package_resolved"
	LockfileMixLock           LockfileKind = "mix_lock"
	LockfileConanLock         LockfileKind = "conan_lock"
)

// Manifest is a dependency source file declaring intended dependencies.
type Manifest struct {
	Kind ManifestKind
	Path string
}

// Lockfile is a dependency source file recording a pinned dependency set.
type Lockfile struct {
	Kind LockfileKind
	Path string
}

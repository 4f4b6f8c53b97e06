package subproject

import "github.com/depscope/depscope/pkg/deps"

// DefaultMatchers returns the ordered matcher list covering the supported
// package managers. Order matters twice over: matchers consume files
// first-match-wins, so lockfile-pairing matchers come before manifest-only
// ones, and within the lockfile group more specific pairings come before
// looser ones. Each call returns a fresh slice, so callers may reorder or
// trim their copy freely.
func DefaultMatchers() []Matcher {
	return []Matcher{
		// javascript
		ExactLockfileManifestMatcher{
			LockfileName: "package-lock.json", ManifestName: "package.json",
			LockfileKind: deps.LockfilePackageLockJson, ManifestKind: deps.ManifestPackageJson,
			Ecosystem: deps.EcosystemNpm, MakeManifestOnly: true,
		},
		ExactLockfileManifestMatcher{
			LockfileName: "yarn.lock", ManifestName: "package.json",
			LockfileKind: deps.LockfileYarnLock, ManifestKind: deps.ManifestPackageJson,
			Ecosystem: deps.EcosystemNpm,
		},
		ExactLockfileManifestMatcher{
			LockfileName: "pnpm-lock.yaml", ManifestName: "package.json",
			LockfileKind: deps.LockfilePnpmLock, ManifestKind: deps.ManifestPackageJson,
			Ecosystem: deps.EcosystemNpm,
		},

		// python
		ExactLockfileManifestMatcher{
			LockfileName: "Pipfile.lock", ManifestName: "Pipfile",
			LockfileKind: deps.LockfilePipfileLock, ManifestKind: deps.ManifestPipfile,
			Ecosystem: deps.EcosystemPypi, MakeManifestOnly: true,
		},
		ExactLockfileManifestMatcher{
			LockfileName: "poetry.lock", ManifestName: "pyproject.toml",
			LockfileKind: deps.LockfilePoetryLock, ManifestKind: deps.ManifestPyprojectToml,
			Ecosystem: deps.EcosystemPypi,
		},
		ExactLockfileManifestMatcher{
			LockfileName: "uv.lock", ManifestName: "pyproject.toml",
			LockfileKind: deps.LockfileUvLock, ManifestKind: deps.ManifestPyprojectToml,
			Ecosystem: deps.EcosystemPypi,
		},
		ExactLockfileManifestMatcher{
			LockfileName: "requirements.txt", ManifestName: "requirements.in",
			LockfileKind: deps.LockfileRequirementsTxt, ManifestKind: deps.ManifestRequirementsIn,
			Ecosystem: deps.EcosystemPypi, MakeManifestOnly: true,
		},

		// ruby
		ExactLockfileManifestMatcher{
			LockfileName: "Gemfile.lock", ManifestName: "Gemfile",
			LockfileKind: deps.LockfileGemfileLock, ManifestKind: deps.ManifestGemfile,
			Ecosystem: deps.EcosystemGem, MakeManifestOnly: true,
		},

		// go; go.mod is both declaration and pin, so it is modeled as a lone
		// lockfile
		ExactLockfileManifestMatcher{
			LockfileName: "go.mod",
			LockfileKind: deps.LockfileGoMod,
			Ecosystem:    deps.EcosystemGomod,
		},

		// rust
		ExactLockfileManifestMatcher{
			LockfileName: "Cargo.lock", ManifestName: "Cargo.toml",
			LockfileKind: deps.LockfileCargoLock, ManifestKind: deps.ManifestCargoToml,
			Ecosystem: deps.EcosystemCargo, MakeManifestOnly: true,
		},

		// jvm
		ExactLockfileManifestMatcher{
			LockfileName: "maven_dep_tree.txt", ManifestName: "pom.xml",
			LockfileKind: deps.LockfileMavenDepTree, ManifestKind: deps.ManifestPomXml,
			Ecosystem: deps.EcosystemMaven,
		},
		ExactLockfileManifestMatcher{
			LockfileName: "gradle.lockfile", ManifestName: "build.gradle",
			LockfileKind: deps.LockfileGradleLockfile, ManifestKind: deps.ManifestBuildGradle,
			Ecosystem: deps.EcosystemMaven,
		},

		// php
		ExactLockfileManifestMatcher{
			LockfileName: "composer.lock", ManifestName: "composer.json",
			LockfileKind: deps.LockfileComposerLock, ManifestKind: deps.ManifestComposerJson,
			Ecosystem: deps.EcosystemComposer, MakeManifestOnly: true,
		},

		// dotnet
		PatternManifestStaticLockfileMatcher{
			ManifestPattern: "*.csproj", LockfileName: "packages.lock.json",
			LockfileKind: deps.LockfileNugetPackagesLock, ManifestKind: deps.ManifestCsproj,
			Ecosystem: deps.EcosystemNuget, MakeManifestOnly: true,
		},

		// dart
		ExactLockfileManifestMatcher{
			LockfileName: "pubspec.lock", ManifestName: "pubspec.yaml",
			LockfileKind: deps.LockfilePubspecLock, ManifestKind: deps.ManifestPubspecYaml,
			Ecosystem: deps.EcosystemPub, MakeManifestOnly: true,
		},

		// swift
		ExactLockfileManifestMatcher{
			LockfileName: "Package.resolved", ManifestName: "Package.swift",
			LockfileKind: deps.LockfileSwiftPackageRes, ManifestKind: deps.ManifestPackageSwift,
			Ecosystem: deps.EcosystemSwiftPM, MakeManifestOnly: true,
		},

		// elixir
		ExactLockfileManifestMatcher{
			LockfileName: "mix.lock", ManifestName: "mix.exs",
			LockfileKind: deps.LockfileMixLock, ManifestKind: deps.ManifestMixExs,
			Ecosystem: deps.EcosystemHex, MakeManifestOnly: true,
		},

		// conan is tracked for telemetry but has no resolvable ecosystem
		ExactLockfileManifestMatcher{
			LockfileName: "conan.lock",
			LockfileKind: deps.LockfileConanLock,
			Ecosystem:    deps.EcosystemNone,
		},

		// manifest-only matchers run last so paired matchers claim their
		// manifests first
		ExactManifestOnlyMatcher{
			ManifestName: "pom.xml", ManifestKind: deps.ManifestPomXml,
			Ecosystem: deps.EcosystemMaven,
		},
		ExactManifestOnlyMatcher{
			ManifestName: "build.gradle", ManifestKind: deps.ManifestBuildGradle,
			Ecosystem: deps.EcosystemMaven,
		},
		ExactManifestOnlyMatcher{
			ManifestName: "setup.py", ManifestKind: deps.ManifestSetupPy,
			Ecosystem: deps.EcosystemPypi,
		},
		ExactManifestOnlyMatcher{
			ManifestName: "conanfile.py", ManifestKind: deps.ManifestConanfile,
			Ecosystem: deps.EcosystemNone,
		},
		ExactManifestOnlyMatcher{
			ManifestName: "conanfile.txt", ManifestKind: deps.ManifestConanfileTxt,
			Ecosystem: deps.EcosystemNone,
		},
	}
}

// Package engine provides the client for the remote resolution engine: the
// service that performs dynamic dependency resolution (building or
// executing a project to observe its real dependency set) and delegated
// parsing of formats the in-process parsers cannot handle.
//
// The wire protocol is JSON over HTTP. Each request carries an ordered
// list of dependency sources; the response echoes each source back next to
// a tagged ok/err result. The client always sends exactly one source per
// call even though the protocol allows a batch.
package engine

import (
	"fmt"

	"github.com/depscope/depscope/pkg/deps"
)

// Source kind tags used on the wire.
const (
	kindManifestOnly     = "manifest_only"
	kindLockfileOnly     = "lockfile_only"
	kindManifestLockfile = "manifest_lockfile"
	kindMultiLockfile    = "multi_lockfile"
)

// WireFile is a manifest or lockfile reference on the wire.
type WireFile struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// WireSource is the tagged-union encoding of a dependency source.
type WireSource struct {
	Kind     string       `json:"kind"`
	Manifest *WireFile    `json:"manifest,omitempty"`
	Lockfile *WireFile    `json:"lockfile,omitempty"`
	Sources  []WireSource `json:"sources,omitempty"`
}

// WireDependency mirrors deps.FoundDependency on the wire.
type WireDependency struct {
	Package      string               `json:"package"`
	Version      string               `json:"version"`
	Ecosystem    string               `json:"ecosystem,omitempty"`
	Transitivity string               `json:"transitivity"`
	Children     []deps.DependencyKey `json:"children,omitempty"`
	LockfilePath string               `json:"lockfile_path,omitempty"`
	ManifestPath string               `json:"manifest_path,omitempty"`
}

// WireError is one typed resolution failure reported by the engine.
type WireError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// OkResult carries resolved dependencies plus non-fatal errors.
type OkResult struct {
	Dependencies []WireDependency `json:"dependencies"`
	Errors       []WireError      `json:"errors,omitempty"`
}

// ErrResult carries the failure list of an unresolvable source.
type ErrResult struct {
	Errors []WireError `json:"errors"`
}

// ResultBody is the ok/err tagged union. Exactly one field is set.
type ResultBody struct {
	Ok  *OkResult  `json:"ok,omitempty"`
	Err *ErrResult `json:"err,omitempty"`
}

// ResolveResult pairs an echoed source with its result.
type ResolveResult struct {
	Source WireSource `json:"source"`
	Result ResultBody `json:"result"`
}

// ResolveRequest is the request body of the resolve endpoint.
type ResolveRequest struct {
	Sources []WireSource `json:"sources"`
}

// ResolveResponse is the response body of the resolve endpoint.
type ResolveResponse struct {
	Results []ResolveResult `json:"results"`
}

// EncodeSource converts a dependency source to its wire form.
func EncodeSource(src deps.Source) WireSource {
	switch s := src.(type) {
	case deps.ManifestOnly:
		return WireSource{
			Kind:     kindManifestOnly,
			Manifest: &WireFile{Kind: string(s.Manifest.Kind), Path: s.Manifest.Path},
		}
	case deps.LockfileOnly:
		return WireSource{
			Kind:     kindLockfileOnly,
			Lockfile: &WireFile{Kind: string(s.Lockfile.Kind), Path: s.Lockfile.Path},
		}
	case deps.ManifestLockfile:
		return WireSource{
			Kind:     kindManifestLockfile,
			Manifest: &WireFile{Kind: string(s.Manifest.Kind), Path: s.Manifest.Path},
			Lockfile: &WireFile{Kind: string(s.Lockfile.Kind), Path: s.Lockfile.Path},
		}
	case deps.MultiLockfile:
		children := make([]WireSource, len(s.Sources))
		for i, child := range s.Sources {
			children[i] = EncodeSource(child)
		}
		return WireSource{Kind: kindMultiLockfile, Sources: children}
	}
	// the Source interface is sealed, so this is unreachable
	return WireSource{}
}

// DecodeSource converts a wire source back to the model. Used by the echo
// field and by test servers.
func DecodeSource(w WireSource) (deps.Source, error) {
	switch w.Kind {
	case kindManifestOnly:
		if w.Manifest == nil {
			return nil, fmt.Errorf("manifest_only source without manifest")
		}
		return deps.ManifestOnly{
			Manifest: deps.Manifest{Kind: deps.ManifestKind(w.Manifest.Kind), Path: w.Manifest.Path},
		}, nil
	case kindLockfileOnly:
		if w.Lockfile == nil {
			return nil, fmt.Errorf("lockfile_only source without lockfile")
		}
		return deps.LockfileOnly{
			Lockfile: deps.Lockfile{Kind: deps.LockfileKind(w.Lockfile.Kind), Path: w.Lockfile.Path},
		}, nil
	case kindManifestLockfile:
		if w.Manifest == nil || w.Lockfile == nil {
			return nil, fmt.Errorf("manifest_lockfile source missing a file")
		}
		return deps.ManifestLockfile{
			Manifest: deps.Manifest{Kind: deps.ManifestKind(w.Manifest.Kind), Path: w.Manifest.Path},
			Lockfile: deps.Lockfile{Kind: deps.LockfileKind(w.Lockfile.Kind), Path: w.Lockfile.Path},
		}, nil
	case kindMultiLockfile:
		children := make([]deps.Source, len(w.Sources))
		for i, cw := range w.Sources {
			child, err := DecodeSource(cw)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return deps.NewMultiLockfile(children...), nil
	}
	return nil, fmt.Errorf("unknown source kind %q", w.Kind)
}

// DecodeDependency converts a wire dependency to the model.
func DecodeDependency(w WireDependency) deps.FoundDependency {
	return deps.FoundDependency{
		Package:      w.Package,
		Version:      w.Version,
		Ecosystem:    deps.Ecosystem(w.Ecosystem),
		Transitivity: deps.Transitivity(w.Transitivity),
		Children:     w.Children,
		LockfilePath: w.LockfilePath,
		ManifestPath: w.ManifestPath,
	}
}

// EncodeDependency converts a model dependency to its wire form.
func EncodeDependency(d deps.FoundDependency) WireDependency {
	return WireDependency{
		Package:      d.Package,
		Version:      d.Version,
		Ecosystem:    string(d.Ecosystem),
		Transitivity: string(d.Transitivity),
		Children:     d.Children,
		LockfilePath: d.LockfilePath,
		ManifestPath: d.ManifestPath,
	}
}

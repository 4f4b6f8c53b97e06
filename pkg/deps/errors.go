package deps

import "fmt"

// ParseError reports one malformed entry in a dependency source file. A
// parser records ParseErrors for entries it cannot read and keeps going;
// a ParseError never aborts the rest of the file.
type ParseError struct {
	Path   string `json:"path"`
	Parser string `json:"parser"`
	Reason string `json:"reason"`
	// Line is 1-based; zero means the error is not tied to a line.
	Line int    `json:"line,omitempty"`
	Text string `json:"text,omitempty"`
}

func (e ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Parser, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Parser, e.Reason)
}

// ResolutionErrorKind tags the failure classes reported by the remote
// resolution engine. The core treats these as opaque tags plus a message;
// it never interprets their internals beyond attaching the source file.
type ResolutionErrorKind string

const (
	ResolutionUnsupportedFormat ResolutionErrorKind = "unsupported_format"
	ResolutionParseFailed       ResolutionErrorKind = "parse_failed"
	ResolutionDownloadFailed    ResolutionErrorKind = "download_failed"
	ResolutionBuildFailed       ResolutionErrorKind = "build_failed"
	ResolutionEngineUnavailable ResolutionErrorKind = "engine_unavailable"
	ResolutionInternal          ResolutionErrorKind = "internal"
)

// ResolutionError is one failure reported for a dependency source during
// engine-backed resolution, annotated with the originating file.
type ResolutionError struct {
	Kind       ResolutionErrorKind `json:"kind"`
	Message    string              `json:"message"`
	SourceFile string              `json:"source_file"`
}

func (e ResolutionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.SourceFile, e.Kind, e.Message)
}

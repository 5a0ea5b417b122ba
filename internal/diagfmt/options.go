package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short paths as written and shortens long ones
	// to their basename.
	PathModeAuto PathMode = iota
	// PathModeAbsolute prints paths exactly as registered.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int // extra source lines around the primary line
	PathMode  PathMode
	BaseDir   string // root for PathModeRelative
	ShowNotes bool
	ShowFixes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // add line/col to every location
	PathMode         PathMode
	BaseDir          string
	Max              int // truncate the output, not the bag
	IncludeNotes     bool
	IncludeFixes     bool
}

package cache

// Keyer derives cache keys.
type Keyer interface {
	// ReportKey returns the key of the report for a document hash.
	ReportKey(documentHash string, opts ReportKeyOpts) string

	// LibraryKey returns the key of a node type library listing.
	LibraryKey(version string) string
}

// ReportKeyOpts holds the analysis options that change a report.
type ReportKeyOpts struct {
	VXVersion   string `json:"vx_version"`
	MaxPasses   int    `json:"max_passes"`
	LibraryHash string `json:"library_hash,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ReportKey returns "report:<hash of document hash and options>".
func (DefaultKeyer) ReportKey(documentHash string, opts ReportKeyOpts) string {
	return hashKey("report", documentHash, opts)
}

// LibraryKey returns "library:<version>".
func (DefaultKeyer) LibraryKey(version string) string {
	return "library:" + version
}

var _ Keyer = DefaultKeyer{}

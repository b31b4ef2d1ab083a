package cache

// Keyer builds cache keys. Every option that changes a compilation result
// must be part of its key.
type Keyer interface {
	// CompileKey identifies a compiled circuit.
	CompileKey(sourceHash string, opts CompileKeyOpts) string

	// LayersKey identifies the serial layer listing of a circuit.
	LayersKey(sourceHash string) string
}

// CompileKeyOpts are the inputs of a compilation besides the source.
type CompileKeyOpts struct {
	Target   string         `json:"target"`
	Basis    []string       `json:"basis"`
	Coupling [][]int        `json:"coupling"`
	Optimize bool           `json:"optimize"`
	Physical bool           `json:"physical"`
	Layout   map[string]int `json:"layout,omitempty"`

	MaxIterations  int    `json:"max_iterations"`
	MaxUnrollDepth int    `json:"max_unroll_depth"`
	SwapGate       string `json:"swap_gate"`

	// Version is the compiler version; upgrades invalidate old entries.
	Version string `json:"version"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) CompileKey(sourceHash string, opts CompileKeyOpts) string {
	return hashKey("compile", sourceHash, opts)
}

func (DefaultKeyer) LayersKey(sourceHash string) string {
	return "layers:" + sourceHash
}

var _ Keyer = DefaultKeyer{}

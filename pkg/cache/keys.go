package cache

// Keyer derives cache keys. Swapping the Keyer lets several tenants share
// one backend without colliding; see [ScopedKeyer].
type Keyer interface {
	// SliceKey returns the key for the slice set computed from an image whose
	// content hash is imageHash.
	SliceKey(imageHash string, opts SliceKeyOpts) string
}

// SliceKeyOpts holds every parameter that changes a slicing result.
type SliceKeyOpts struct {
	Mode           string `json:"mode"`
	AlphaThreshold int    `json:"alpha_threshold,omitempty"`
	MinWidth       int    `json:"min_width,omitempty"`
	MinHeight      int    `json:"min_height,omitempty"`
	Pad            int    `json:"pad,omitempty"`
	CellWidth      int    `json:"cell_width,omitempty"`
	CellHeight     int    `json:"cell_height,omitempty"`
	Margin         int    `json:"margin,omitempty"`
	NameCells      bool   `json:"name_cells,omitempty"`
}

// DefaultKeyer produces unprefixed "slices:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SliceKey hashes the image hash together with the options.
func (DefaultKeyer) SliceKey(imageHash string, opts SliceKeyOpts) string {
	return hashKey("slices", imageHash, opts)
}

package animation

// ClipBuilderOption is a functional option for configuring a Clip during construction.
type ClipBuilderOption func(*clip)

// WithName is an option builder that sets the debug name of the Clip.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - ClipBuilderOption: a function that applies the name option to a clip
func WithName(name string) ClipBuilderOption {
	return func(c *clip) {
		c.name = name
	}
}

// WithKeysPerSecond is an option builder that records the authored key rate of the Clip.
//
// Parameters:
//   - rate: keys per second
//
// Returns:
//   - ClipBuilderOption: a function that applies the key rate option to a clip
func WithKeysPerSecond(rate uint32) ClipBuilderOption {
	return func(c *clip) {
		c.keysPerSecond = rate
	}
}

package audio

// Clip is a resolved audio resource. The cache hands out the same *Clip for a
// key for the whole application session, so it must not be mutated.
type Clip struct {
	Key  ClipKey
	Path string
	Data []byte
}

// Size returns the clip length in bytes.
func (c *Clip) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Data)
}

package dhkem

// maxConcatSize bounds the largest byte string assembled on the derivation
// path: a KEM context of up to three serialized public keys. Concatenated
// Diffie-Hellman outputs are strictly smaller.
const maxConcatSize = 3 * maxPublicKeySize

// concatBuffer joins a small number of bounded-length byte strings in a
// fixed-size backing array. It never grows, so building KEM contexts and
// concatenated secrets involves no heap allocation and no allocator-dependent
// timing. Writing past capacity is a programming error, not a runtime
// condition: every input length is fixed by the group in use.
type concatBuffer struct {
	buf [maxConcatSize]byte
	n   int
}

// write appends p to the buffer.
func (c *concatBuffer) write(p []byte) {
	if c.n+len(p) > len(c.buf) {
		panic("dhkem: concat buffer overflow")
	}
	c.n += copy(c.buf[c.n:], p)
}

// bytes returns the filled region of the buffer.
func (c *concatBuffer) bytes() []byte {
	return c.buf[:c.n]
}

// len returns the number of bytes written so far.
func (c *concatBuffer) len() int {
	return c.n
}

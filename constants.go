package dhkem

import "errors"

// KEM identifiers from the HPKE KEM registry (RFC 9180 §7.1). The identifier
// is baked into every KDF call a KEM makes, so both peers must agree on it.
const (
	KEMP256HKDFSHA256   uint16 = 0x0010
	KEMP384HKDFSHA384   uint16 = 0x0011
	KEMP521HKDFSHA512   uint16 = 0x0012
	KEMX25519HKDFSHA256 uint16 = 0x0020
	KEMX448HKDFSHA512   uint16 = 0x0021
)

// Key and Diffie-Hellman output sizes for each supported group.
// These values are fixed by RFC 7748 and RFC 9180 §7.1.
const (
	// X25519 sizes (RFC 7748)
	X25519PublicKeySize  = 32
	X25519PrivateKeySize = 32
	X25519SharedSize     = 32

	// X448 sizes (RFC 7748)
	X448PublicKeySize  = 56
	X448PrivateKeySize = 56
	X448SharedSize     = 56

	// P-256 sizes (uncompressed SEC 1 point encoding)
	P256PublicKeySize  = 65
	P256PrivateKeySize = 32
	P256SharedSize     = 32

	// P-384 sizes
	P384PublicKeySize  = 97
	P384PrivateKeySize = 48
	P384SharedSize     = 48

	// P-521 sizes
	P521PublicKeySize  = 133
	P521PrivateKeySize = 66
	P521SharedSize     = 66
)

// maxPublicKeySize is the largest serialized public key of any supported
// group (an uncompressed P-521 point). It sizes the fixed concatenation
// buffers used on the derivation path.
const maxPublicKeySize = P521PublicKeySize

// Error constants used throughout the package.
var (
	// ErrEncap indicates that a Diffie-Hellman exchange during encapsulation
	// produced an invalid result. The recipient or sender key material
	// should be treated as untrusted.
	ErrEncap = errors.New("dhkem: encapsulation failed")

	// ErrDecap indicates the same condition during decapsulation, typically
	// a malicious or corrupted encapsulated key.
	ErrDecap = errors.New("dhkem: decapsulation failed")

	// ErrInvalidPublicKey indicates that a public key has invalid format or
	// length.
	ErrInvalidPublicKey = errors.New("dhkem: invalid public key")

	// ErrInvalidPrivateKey indicates that a private key has invalid format
	// or length.
	ErrInvalidPrivateKey = errors.New("dhkem: invalid private key")

	// ErrDHFailed indicates that a Diffie-Hellman exchange yielded the
	// identity element or another low-order result.
	ErrDHFailed = errors.New("dhkem: diffie-hellman exchange yielded a low-order result")

	// ErrDeriveKeypairFailed indicates that deterministic keypair derivation
	// exhausted its rejection-sampling budget without finding a valid
	// scalar. The probability of this for honest keying material is
	// negligible.
	ErrDeriveKeypairFailed = errors.New("dhkem: keypair derivation failed")
)

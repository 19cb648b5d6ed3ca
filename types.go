package dhkem

import "hash"

// A DHKey is a keypair used for Diffie-Hellman key agreement.
type DHKey struct {
	Private []byte
	Public  []byte
}

// A DHGroup implements the Diffie-Hellman group a KEM is built on.
// Implementations are stateless value types and safe for concurrent use.
type DHGroup interface {
	// DeriveKeypair deterministically derives a keypair from input keying
	// material. The suite ID salts the derivation so the same material fed
	// to two different KEMs never yields the same keypair. The keying
	// material should carry at least PrivateKeySize() bytes of entropy.
	DeriveKeypair(kdf KDF, suiteID, ikm []byte) (DHKey, error)

	// DH performs a Diffie-Hellman calculation between the provided private
	// and public keys and returns the result. It must fail, not silently
	// succeed, when the result would be the group's identity element or
	// another low-order point: such an outcome means the peer key is
	// malicious or malformed.
	DH(privkey, pubkey []byte) ([]byte, error)

	// PublicFromPrivate computes the public key corresponding to privkey.
	PublicFromPrivate(privkey []byte) ([]byte, error)

	// ParsePublicKey validates an encoded public key and returns a copy of
	// its canonical encoding. It rejects wrong-length or off-curve input.
	ParsePublicKey(b []byte) ([]byte, error)

	// PublicKeySize returns the length in bytes of serialized public keys.
	PublicKeySize() int

	// PrivateKeySize returns the length in bytes of private keys.
	PrivateKeySize() int

	// DHSize returns the number of bytes returned by DH.
	DHSize() int

	// GroupName returns the name of the group (e.g., "X25519").
	GroupName() string
}

// A KDF is an extract-and-expand key derivation function (HKDF over some
// hash) used to turn raw Diffie-Hellman outputs into uniform shared secrets.
type KDF interface {
	// Hash returns the constructor of the underlying hash function.
	Hash() func() hash.Hash

	// OutputSize returns the output length in bytes of the underlying hash.
	// A KEM shared secret has exactly this length.
	OutputSize() int

	// KDFName returns the name of the KDF (e.g., "HKDF-SHA256").
	KDFName() string
}

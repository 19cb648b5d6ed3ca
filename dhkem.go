// Package dhkem implements the Diffie-Hellman based key encapsulation
// mechanisms (DHKEM) of RFC 9180 Hybrid Public Key Encryption.
//
// A KEM lets a sender derive a shared secret bound to a recipient's public
// key, optionally also binding the sender's own identity key, and transmit a
// compact encapsulated key from which the recipient derives the identical
// secret. The shared secret seeds a symmetric encryption layer, which is
// outside this package.
package dhkem

import (
	"crypto/rand"
	"io"
)

// An EncappedKey holds the content of an encapsulated secret: the sender's
// ephemeral public key. Its wire encoding is exactly the group's public key
// encoding, with no framing added.
type EncappedKey struct {
	pub []byte
}

// Bytes returns the wire encoding of the encapped key.
func (e EncappedKey) Bytes() []byte {
	return e.pub
}

// A KEM pairs a Diffie-Hellman group with a KDF under a registered 16-bit
// identifier. Every operation is a pure function of its inputs; KEM values
// hold no mutable state and may be used concurrently. Use the predefined
// package values, or NewKEM for a custom group/KDF combination.
type KEM struct {
	group   DHGroup
	kdf     KDF
	id      uint16
	name    string
	suiteID []byte
}

// NewKEM builds a KEM from a Diffie-Hellman group, a KDF and a KEM
// identifier. The identifier must match the value the peer expects: it is
// folded into every derivation for domain separation.
func NewKEM(group DHGroup, kdf KDF, kemID uint16, name string) *KEM {
	return &KEM{
		group:   group,
		kdf:     kdf,
		id:      kemID,
		name:    name,
		suiteID: kemSuiteID(kemID),
	}
}

// Predefined KEM instances, one per DHKEM codepoint in the HPKE KEM registry
// (RFC 9180 §7.1).
var (
	// X25519HKDFSHA256 is DHKEM(X25519, HKDF-SHA256).
	X25519HKDFSHA256 = NewKEM(dh25519{}, KDFHKDFSHA256, KEMX25519HKDFSHA256, "DHKEM(X25519, HKDF-SHA256)")

	// X448HKDFSHA512 is DHKEM(X448, HKDF-SHA512).
	X448HKDFSHA512 = NewKEM(dh448{}, KDFHKDFSHA512, KEMX448HKDFSHA512, "DHKEM(X448, HKDF-SHA512)")

	// P256HKDFSHA256 is DHKEM(P-256, HKDF-SHA256).
	P256HKDFSHA256 = NewKEM(dhP256, KDFHKDFSHA256, KEMP256HKDFSHA256, "DHKEM(P-256, HKDF-SHA256)")

	// P384HKDFSHA384 is DHKEM(P-384, HKDF-SHA384).
	P384HKDFSHA384 = NewKEM(dhP384, KDFHKDFSHA384, KEMP384HKDFSHA384, "DHKEM(P-384, HKDF-SHA384)")

	// P521HKDFSHA512 is DHKEM(P-521, HKDF-SHA512).
	P521HKDFSHA512 = NewKEM(dhP521, KDFHKDFSHA512, KEMP521HKDFSHA512, "DHKEM(P-521, HKDF-SHA512)")
)

// KEMID returns the KEM's registered 16-bit identifier.
func (k *KEM) KEMID() uint16 { return k.id }

// KEMName returns the name of the KEM (e.g., "DHKEM(X25519, HKDF-SHA256)").
func (k *KEM) KEMName() string { return k.name }

// SharedSecretSize returns the length in bytes of shared secrets, equal to
// the output size of the hash underlying the KDF.
func (k *KEM) SharedSecretSize() int { return k.kdf.OutputSize() }

// EncappedKeySize returns the wire length in bytes of encapped keys.
func (k *KEM) EncappedKeySize() int { return k.group.PublicKeySize() }

// PublicKeySize returns the length in bytes of serialized public keys.
func (k *KEM) PublicKeySize() int { return k.group.PublicKeySize() }

// PrivateKeySize returns the length in bytes of private keys.
func (k *KEM) PrivateKeySize() int { return k.group.PrivateKeySize() }

// DeriveKeypair deterministically derives a keypair from the given input
// keying material. The same material always yields the same keypair for this
// KEM, and a different keypair for any other KEM. The keying material should
// carry at least PrivateKeySize() bytes of entropy.
func (k *KEM) DeriveKeypair(ikm []byte) (DHKey, error) {
	return k.group.DeriveKeypair(k.kdf, k.suiteID, ikm)
}

// GenerateKeypair generates a new keypair using random as a source of
// entropy. If random is nil, crypto/rand.Reader is used. The reader is only
// held for the duration of the call.
func (k *KEM) GenerateKeypair(random io.Reader) (DHKey, error) {
	if random == nil {
		random = rand.Reader
	}
	ikm := make([]byte, k.group.PrivateKeySize())
	if _, err := io.ReadFull(random, ikm); err != nil {
		return DHKey{}, err
	}
	defer secureZero(ikm)
	return k.DeriveKeypair(ikm)
}

// ParseEncappedKey validates wire bytes as an encapped key for this KEM.
// Malformed or wrong-length input yields ErrInvalidPublicKey.
func (k *KEM) ParseEncappedKey(b []byte) (EncappedKey, error) {
	pub, err := k.group.ParsePublicKey(b)
	if err != nil {
		return EncappedKey{}, err
	}
	return EncappedKey{pub: pub}, nil
}

// Encap derives a shared secret that the holder of the private key matching
// pkRecipient can reproduce, along with the encapped key to transmit. A fresh
// ephemeral keypair is drawn from random (crypto/rand.Reader if nil).
func (k *KEM) Encap(pkRecipient []byte, random io.Reader) ([]byte, EncappedKey, error) {
	eph, err := k.GenerateKeypair(random)
	if err != nil {
		return nil, EncappedKey{}, err
	}
	defer secureZero(eph.Private)
	return k.encap(pkRecipient, nil, eph)
}

// AuthEncap is Encap with the sender's identity keypair additionally bound
// into the derived secret, proving sender authenticity to the recipient.
func (k *KEM) AuthEncap(pkRecipient []byte, sender DHKey, random io.Reader) ([]byte, EncappedKey, error) {
	eph, err := k.GenerateKeypair(random)
	if err != nil {
		return nil, EncappedKey{}, err
	}
	defer secureZero(eph.Private)
	return k.encap(pkRecipient, &sender, eph)
}

// EncapWithEphemeral is Encap with an explicit ephemeral private key instead
// of a randomness source. Reusing an ephemeral key across encapsulations
// voids the scheme's security; this form exists for deterministic callers
// and test vectors.
func (k *KEM) EncapWithEphemeral(pkRecipient, skEphemeral []byte) ([]byte, EncappedKey, error) {
	pkEphemeral, err := k.group.PublicFromPrivate(skEphemeral)
	if err != nil {
		return nil, EncappedKey{}, err
	}
	return k.encap(pkRecipient, nil, DHKey{Private: skEphemeral, Public: pkEphemeral})
}

// AuthEncapWithEphemeral is AuthEncap with an explicit ephemeral private key.
func (k *KEM) AuthEncapWithEphemeral(pkRecipient []byte, sender DHKey, skEphemeral []byte) ([]byte, EncappedKey, error) {
	pkEphemeral, err := k.group.PublicFromPrivate(skEphemeral)
	if err != nil {
		return nil, EncappedKey{}, err
	}
	return k.encap(pkRecipient, &sender, DHKey{Private: skEphemeral, Public: pkEphemeral})
}

// encap is the common core of the four Encap variants (RFC 9180 §4.1 Encap
// and AuthEncap). A nil sender selects the unauthenticated branch. The
// orderings of the KEM context and of the concatenated secrets are part of
// the wire-compatible security contract and must not change.
func (k *KEM) encap(pkRecipient []byte, sender *DHKey, eph DHKey) ([]byte, EncappedKey, error) {
	pkR, err := k.group.ParsePublicKey(pkRecipient)
	if err != nil {
		return nil, EncappedKey{}, err
	}

	dhEph, err := k.group.DH(eph.Private, pkR)
	if err != nil {
		return nil, EncappedKey{}, ErrEncap
	}
	defer secureZero(dhEph)

	// The encapped key is the ephemeral pubkey.
	enc := EncappedKey{pub: eph.Public}

	// kem_context = enc || pkRm [|| pkSm]
	var kemContext concatBuffer
	kemContext.write(enc.pub)
	kemContext.write(pkR)

	sharedSecret := make([]byte, k.kdf.OutputSize())
	if sender == nil {
		if err := extractAndExpand(k.kdf, k.suiteID, dhEph, kemContext.bytes(), sharedSecret); err != nil {
			return nil, EncappedKey{}, err
		}
		return sharedSecret, enc, nil
	}

	kemContext.write(sender.Public)

	// Tie the sender's identity in: a second exchange between the sender's
	// identity key and the recipient's pubkey.
	dhID, err := k.group.DH(sender.Private, pkR)
	if err != nil {
		return nil, EncappedKey{}, ErrEncap
	}
	defer secureZero(dhID)

	// concatenated secrets = dhEph || dhID
	var secrets concatBuffer
	secrets.write(dhEph)
	secrets.write(dhID)
	defer secureZero(secrets.bytes())

	if err := extractAndExpand(k.kdf, k.suiteID, secrets.bytes(), kemContext.bytes(), sharedSecret); err != nil {
		return nil, EncappedKey{}, err
	}
	return sharedSecret, enc, nil
}

// Decap recovers the shared secret from an encapped key using the
// recipient's private key. A tampered or mismatched encapped key either
// fails with ErrDecap or yields a secret that does not match the sender's;
// it never panics.
func (k *KEM) Decap(skRecipient []byte, enc EncappedKey) ([]byte, error) {
	return k.decap(skRecipient, nil, enc)
}

// AuthDecap is Decap for secrets produced by AuthEncap: pkSender is the
// sender's identity public key the secret was bound to.
//
// Decapsulating with the wrong authentication mode does not error. It
// silently derives a different secret, because the KEM context differs; the
// mode must be agreed out of band, exactly as RFC 9180 specifies.
func (k *KEM) AuthDecap(skRecipient, pkSender []byte, enc EncappedKey) ([]byte, error) {
	pkS, err := k.group.ParsePublicKey(pkSender)
	if err != nil {
		return nil, err
	}
	return k.decap(skRecipient, pkS, enc)
}

// decap mirrors encap exactly: same KEM context construction, same
// concatenation orders, with the ephemeral pubkey taken from the encapped
// key and the recipient pubkey recomputed from the private key.
func (k *KEM) decap(skRecipient, pkSender []byte, enc EncappedKey) ([]byte, error) {
	dhEph, err := k.group.DH(skRecipient, enc.pub)
	if err != nil {
		return nil, ErrDecap
	}
	defer secureZero(dhEph)

	pkR, err := k.group.PublicFromPrivate(skRecipient)
	if err != nil {
		return nil, ErrDecap
	}

	var kemContext concatBuffer
	kemContext.write(enc.pub)
	kemContext.write(pkR)

	sharedSecret := make([]byte, k.kdf.OutputSize())
	if pkSender == nil {
		if err := extractAndExpand(k.kdf, k.suiteID, dhEph, kemContext.bytes(), sharedSecret); err != nil {
			return nil, err
		}
		return sharedSecret, nil
	}

	kemContext.write(pkSender)

	dhID, err := k.group.DH(skRecipient, pkSender)
	if err != nil {
		return nil, ErrDecap
	}
	defer secureZero(dhID)

	var secrets concatBuffer
	secrets.write(dhEph)
	secrets.write(dhID)
	defer secureZero(secrets.bytes())

	if err := extractAndExpand(k.kdf, k.suiteID, secrets.bytes(), kemContext.bytes(), sharedSecret); err != nil {
		return nil, err
	}
	return sharedSecret, nil
}

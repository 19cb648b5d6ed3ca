package dhkem

import "golang.org/x/crypto/curve25519"

// dh25519 implements DHGroup over Curve25519 (RFC 7748 X25519).
type dh25519 struct{}

// DeriveKeypair derives an X25519 keypair per RFC 9180 §7.1.3: any 32-byte
// string expanded from the keying material is a valid private key, so no
// rejection sampling is needed.
func (dh25519) DeriveKeypair(kdf KDF, suiteID, ikm []byte) (DHKey, error) {
	prk := labeledExtract(kdf, nil, suiteID, "dkp_prk", ikm)
	defer secureZero(prk)

	priv := make([]byte, X25519PrivateKeySize)
	if err := labeledExpand(kdf, prk, suiteID, "sk", nil, priv); err != nil {
		return DHKey{}, err
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		secureZero(priv)
		return DHKey{}, ErrDeriveKeypairFailed
	}
	return DHKey{Private: priv, Public: pub}, nil
}

func (dh25519) DH(privkey, pubkey []byte) ([]byte, error) {
	if len(privkey) != X25519PrivateKeySize {
		return nil, ErrInvalidPrivateKey
	}
	if len(pubkey) != X25519PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	// X25519 rejects low-order peer points by erroring on an all-zero
	// shared output.
	shared, err := curve25519.X25519(privkey, pubkey)
	if err != nil {
		return nil, ErrDHFailed
	}
	return shared, nil
}

func (dh25519) PublicFromPrivate(privkey []byte) ([]byte, error) {
	if len(privkey) != X25519PrivateKeySize {
		return nil, ErrInvalidPrivateKey
	}
	pub, err := curve25519.X25519(privkey, curve25519.Basepoint)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	return pub, nil
}

// ParsePublicKey checks the length only: every 32-byte string is a valid
// X25519 public key encoding. Low-order points are caught by DH itself.
func (dh25519) ParsePublicKey(b []byte) ([]byte, error) {
	if len(b) != X25519PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	pub := make([]byte, X25519PublicKeySize)
	copy(pub, b)
	return pub, nil
}

func (dh25519) PublicKeySize() int  { return X25519PublicKeySize }
func (dh25519) PrivateKeySize() int { return X25519PrivateKeySize }
func (dh25519) DHSize() int         { return X25519SharedSize }
func (dh25519) GroupName() string   { return "X25519" }

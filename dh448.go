package dhkem

import "github.com/cloudflare/circl/dh/x448"

// dh448 implements DHGroup over Curve448 (RFC 7748 X448) using CIRCL's
// constant-time implementation.
type dh448 struct{}

// DeriveKeypair derives an X448 keypair per RFC 9180 §7.1.3. As with X25519,
// every 56-byte string is a valid private key.
func (g dh448) DeriveKeypair(kdf KDF, suiteID, ikm []byte) (DHKey, error) {
	prk := labeledExtract(kdf, nil, suiteID, "dkp_prk", ikm)
	defer secureZero(prk)

	priv := make([]byte, X448PrivateKeySize)
	if err := labeledExpand(kdf, prk, suiteID, "sk", nil, priv); err != nil {
		return DHKey{}, err
	}
	pub, err := g.PublicFromPrivate(priv)
	if err != nil {
		secureZero(priv)
		return DHKey{}, ErrDeriveKeypairFailed
	}
	return DHKey{Private: priv, Public: pub}, nil
}

func (g dh448) DH(privkey, pubkey []byte) ([]byte, error) {
	if len(privkey) != X448PrivateKeySize {
		return nil, ErrInvalidPrivateKey
	}
	if len(pubkey) != X448PublicKeySize {
		return nil, ErrInvalidPublicKey
	}

	var secret, public, shared x448.Key
	copy(secret[:], privkey)
	copy(public[:], pubkey)
	defer secureZero(secret[:])

	// Shared reports false when the peer point is low order.
	if !x448.Shared(&shared, &secret, &public) {
		return nil, ErrDHFailed
	}
	out := make([]byte, X448SharedSize)
	copy(out, shared[:])
	secureZero(shared[:])
	return out, nil
}

func (g dh448) PublicFromPrivate(privkey []byte) ([]byte, error) {
	if len(privkey) != X448PrivateKeySize {
		return nil, ErrInvalidPrivateKey
	}
	var secret, public x448.Key
	copy(secret[:], privkey)
	defer secureZero(secret[:])

	x448.KeyGen(&public, &secret)
	pub := make([]byte, X448PublicKeySize)
	copy(pub, public[:])
	return pub, nil
}

// ParsePublicKey checks the length only: every 56-byte string is a valid
// X448 public key encoding. Low-order points are caught by DH itself.
func (g dh448) ParsePublicKey(b []byte) ([]byte, error) {
	if len(b) != X448PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	pub := make([]byte, X448PublicKeySize)
	copy(pub, b)
	return pub, nil
}

func (g dh448) PublicKeySize() int  { return X448PublicKeySize }
func (g dh448) PrivateKeySize() int { return X448PrivateKeySize }
func (g dh448) DHSize() int         { return X448SharedSize }
func (g dh448) GroupName() string   { return "X448" }

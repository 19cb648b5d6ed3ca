package dhkem

import "crypto/ecdh"

// dhNIST implements DHGroup over the NIST curves exposed by crypto/ecdh,
// which validates that peer points are on the curve and not the identity.
type dhNIST struct {
	curve    ecdh.Curve
	name     string
	pubSize  int
	privSize int
	dhSize   int
	bitmask  byte
}

var (
	dhP256 = dhNIST{curve: ecdh.P256(), name: "P-256", pubSize: P256PublicKeySize, privSize: P256PrivateKeySize, dhSize: P256SharedSize, bitmask: 0xff}
	dhP384 = dhNIST{curve: ecdh.P384(), name: "P-384", pubSize: P384PublicKeySize, privSize: P384PrivateKeySize, dhSize: P384SharedSize, bitmask: 0xff}
	dhP521 = dhNIST{curve: ecdh.P521(), name: "P-521", pubSize: P521PublicKeySize, privSize: P521PrivateKeySize, dhSize: P521SharedSize, bitmask: 0x01}
)

// DeriveKeypair derives a NIST-curve keypair per RFC 9180 §7.1.3: candidate
// scalars are expanded under an incrementing counter and rejection-sampled
// until one lands in [1, order-1]. The masked top byte makes each attempt
// succeed with high probability, so exhausting the 256 counters is a
// negligible-probability event.
func (g dhNIST) DeriveKeypair(kdf KDF, suiteID, ikm []byte) (DHKey, error) {
	prk := labeledExtract(kdf, nil, suiteID, "dkp_prk", ikm)
	defer secureZero(prk)

	candidate := make([]byte, g.privSize)
	defer secureZero(candidate)
	for counter := 0; counter <= 255; counter++ {
		if err := labeledExpand(kdf, prk, suiteID, "candidate", []byte{byte(counter)}, candidate); err != nil {
			return DHKey{}, err
		}
		candidate[0] &= g.bitmask

		priv, err := g.curve.NewPrivateKey(candidate)
		if err != nil {
			// Out of range for the curve order, try the next counter.
			continue
		}
		return DHKey{Private: priv.Bytes(), Public: priv.PublicKey().Bytes()}, nil
	}
	return DHKey{}, ErrDeriveKeypairFailed
}

func (g dhNIST) DH(privkey, pubkey []byte) ([]byte, error) {
	priv, err := g.curve.NewPrivateKey(privkey)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	pub, err := g.curve.NewPublicKey(pubkey)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	shared, err := priv.ECDH(pub)
	if err != nil {
		return nil, ErrDHFailed
	}
	return shared, nil
}

func (g dhNIST) PublicFromPrivate(privkey []byte) ([]byte, error) {
	priv, err := g.curve.NewPrivateKey(privkey)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	return priv.PublicKey().Bytes(), nil
}

// ParsePublicKey rejects wrong lengths, points off the curve and the point
// at infinity, per crypto/ecdh's validation rules.
func (g dhNIST) ParsePublicKey(b []byte) ([]byte, error) {
	pub, err := g.curve.NewPublicKey(b)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return pub.Bytes(), nil
}

func (g dhNIST) PublicKeySize() int  { return g.pubSize }
func (g dhNIST) PrivateKeySize() int { return g.privSize }
func (g dhNIST) DHSize() int         { return g.dhSize }
func (g dhNIST) GroupName() string   { return g.name }

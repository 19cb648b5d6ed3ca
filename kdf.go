package dhkem

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// hpkeVersionLabel prefixes every labeled KDF input (RFC 9180 §4).
var hpkeVersionLabel = []byte("HPKE-v1")

// hkdfKDF implements the KDF interface over HKDF with a configurable hash.
type hkdfKDF struct {
	h    func() hash.Hash
	size int
	name string
}

func (k hkdfKDF) Hash() func() hash.Hash { return k.h }
func (k hkdfKDF) OutputSize() int        { return k.size }
func (k hkdfKDF) KDFName() string        { return k.name }

// Exported KDF instances. These are the three KDFs registered for HPKE
// (RFC 9180 §7.2).
var (
	KDFHKDFSHA256 KDF = hkdfKDF{h: sha256.New, size: sha256.Size, name: "HKDF-SHA256"}
	KDFHKDFSHA384 KDF = hkdfKDF{h: sha512.New384, size: sha512.Size384, name: "HKDF-SHA384"}
	KDFHKDFSHA512 KDF = hkdfKDF{h: sha512.New, size: sha512.Size, name: "HKDF-SHA512"}
)

// kemSuiteID builds the domain-separation string for a KEM:
// "KEM" || I2OSP(kem_id, 2). It is identical for every operation of one KEM
// and distinct across KEMs.
func kemSuiteID(kemID uint16) []byte {
	return []byte{'K', 'E', 'M', byte(kemID >> 8), byte(kemID)}
}

// labeledExtract implements LabeledExtract from RFC 9180 §4: HKDF-Extract
// over keying material framed with the protocol version, the suite ID and a
// label, so no two uses of the same hash can collide.
func labeledExtract(kdf KDF, salt, suiteID []byte, label string, ikm []byte) []byte {
	labeledIKM := make([]byte, 0, len(hpkeVersionLabel)+len(suiteID)+len(label)+len(ikm))
	labeledIKM = append(labeledIKM, hpkeVersionLabel...)
	labeledIKM = append(labeledIKM, suiteID...)
	labeledIKM = append(labeledIKM, label...)
	labeledIKM = append(labeledIKM, ikm...)

	prk := hkdf.Extract(kdf.Hash(), labeledIKM, salt)
	secureZero(labeledIKM)
	return prk
}

// labeledExpand implements LabeledExpand from RFC 9180 §4, filling out with
// derived bytes. It fails only when len(out) exceeds 255 times the hash
// output size, which cannot happen for any fixed KEM in this package.
func labeledExpand(kdf KDF, prk, suiteID []byte, label string, info, out []byte) error {
	labeledInfo := make([]byte, 0, 2+len(hpkeVersionLabel)+len(suiteID)+len(label)+len(info))
	labeledInfo = append(labeledInfo, byte(len(out)>>8), byte(len(out)))
	labeledInfo = append(labeledInfo, hpkeVersionLabel...)
	labeledInfo = append(labeledInfo, suiteID...)
	labeledInfo = append(labeledInfo, label...)
	labeledInfo = append(labeledInfo, info...)

	r := hkdf.Expand(kdf.Hash(), prk, labeledInfo)
	_, err := io.ReadFull(r, out)
	return err
}

// extractAndExpand derives a KEM shared secret from raw Diffie-Hellman
// output and the KEM context binding the participating keys (RFC 9180 §4.1).
// The suite ID salts both stages.
func extractAndExpand(kdf KDF, suiteID, ikm, info, out []byte) error {
	prk := labeledExtract(kdf, nil, suiteID, "eae_prk", ikm)
	err := labeledExpand(kdf, prk, suiteID, "shared_secret", info, out)
	secureZero(prk)
	return err
}

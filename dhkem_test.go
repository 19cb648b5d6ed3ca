package dhkem

import (
	"bytes"
	"errors"
	"sync"
	"testing"
)

// testKEMs covers every predefined KEM instance.
var testKEMs = []struct {
	name string
	kem  *KEM
}{
	{"X25519-HKDF-SHA256", X25519HKDFSHA256},
	{"X448-HKDF-SHA512", X448HKDFSHA512},
	{"P256-HKDF-SHA256", P256HKDFSHA256},
	{"P384-HKDF-SHA384", P384HKDFSHA384},
	{"P521-HKDF-SHA512", P521HKDFSHA512},
}

// repeatedIKM returns n bytes all set to b, for deterministic keypairs in tests.
func repeatedIKM(b byte, n int) []byte {
	ikm := make([]byte, n)
	for i := range ikm {
		ikm[i] = b
	}
	return ikm
}

// TestEncapDecapRoundTrip verifies that the recipient recovers the sender's
// shared secret in unauthenticated mode for every KEM.
func TestEncapDecapRoundTrip(t *testing.T) {
	for _, tc := range testKEMs {
		t.Run(tc.name, func(t *testing.T) {
			recipient, err := tc.kem.GenerateKeypair(nil)
			if err != nil {
				t.Fatalf("GenerateKeypair failed: %v", err)
			}

			ssSender, enc, err := tc.kem.Encap(recipient.Public, nil)
			if err != nil {
				t.Fatalf("Encap failed: %v", err)
			}
			if len(ssSender) != tc.kem.SharedSecretSize() {
				t.Errorf("Expected %d-byte shared secret, got %d bytes", tc.kem.SharedSecretSize(), len(ssSender))
			}
			if len(enc.Bytes()) != tc.kem.EncappedKeySize() {
				t.Errorf("Expected %d-byte encapped key, got %d bytes", tc.kem.EncappedKeySize(), len(enc.Bytes()))
			}

			ssRecipient, err := tc.kem.Decap(recipient.Private, enc)
			if err != nil {
				t.Fatalf("Decap failed: %v", err)
			}
			if !bytes.Equal(ssSender, ssRecipient) {
				t.Error("Sender and recipient derived different shared secrets")
			}
		})
	}
}

// TestAuthEncapDecapRoundTrip verifies the authenticated mode round trip,
// with the sender's identity keypair bound into the secret.
func TestAuthEncapDecapRoundTrip(t *testing.T) {
	for _, tc := range testKEMs {
		t.Run(tc.name, func(t *testing.T) {
			recipient, err := tc.kem.GenerateKeypair(nil)
			if err != nil {
				t.Fatalf("GenerateKeypair failed: %v", err)
			}
			sender, err := tc.kem.GenerateKeypair(nil)
			if err != nil {
				t.Fatalf("GenerateKeypair failed: %v", err)
			}

			ssSender, enc, err := tc.kem.AuthEncap(recipient.Public, sender, nil)
			if err != nil {
				t.Fatalf("AuthEncap failed: %v", err)
			}

			ssRecipient, err := tc.kem.AuthDecap(recipient.Private, sender.Public, enc)
			if err != nil {
				t.Fatalf("AuthDecap failed: %v", err)
			}
			if !bytes.Equal(ssSender, ssRecipient) {
				t.Error("Sender and recipient derived different shared secrets")
			}
		})
	}
}

// TestEncapWithEphemeralDeterministic verifies that a fixed ephemeral key
// makes encapsulation fully reproducible.
func TestEncapWithEphemeralDeterministic(t *testing.T) {
	for _, tc := range testKEMs {
		t.Run(tc.name, func(t *testing.T) {
			recipient, err := tc.kem.DeriveKeypair(repeatedIKM(0x01, tc.kem.PrivateKeySize()))
			if err != nil {
				t.Fatalf("DeriveKeypair failed: %v", err)
			}
			eph, err := tc.kem.DeriveKeypair(repeatedIKM(0x02, tc.kem.PrivateKeySize()))
			if err != nil {
				t.Fatalf("DeriveKeypair failed: %v", err)
			}

			ss1, enc1, err := tc.kem.EncapWithEphemeral(recipient.Public, eph.Private)
			if err != nil {
				t.Fatalf("EncapWithEphemeral failed: %v", err)
			}
			ss2, enc2, err := tc.kem.EncapWithEphemeral(recipient.Public, eph.Private)
			if err != nil {
				t.Fatalf("EncapWithEphemeral failed: %v", err)
			}
			if !bytes.Equal(ss1, ss2) || !bytes.Equal(enc1.Bytes(), enc2.Bytes()) {
				t.Error("Deterministic encapsulation is not reproducible")
			}
		})
	}
}

// TestConcreteScenario pins the behavior for fixed keying material on the
// X25519 KEM: a recipient keypair from 32 bytes of 0x01, an ephemeral key
// from 32 bytes of 0x02, and an encapped key equal to the ephemeral pubkey.
func TestConcreteScenario(t *testing.T) {
	kem := X25519HKDFSHA256

	recipient, err := kem.DeriveKeypair(repeatedIKM(0x01, 32))
	if err != nil {
		t.Fatalf("DeriveKeypair failed: %v", err)
	}
	eph, err := kem.DeriveKeypair(repeatedIKM(0x02, 32))
	if err != nil {
		t.Fatalf("DeriveKeypair failed: %v", err)
	}

	ssSender, enc, err := kem.EncapWithEphemeral(recipient.Public, eph.Private)
	if err != nil {
		t.Fatalf("EncapWithEphemeral failed: %v", err)
	}
	if !bytes.Equal(enc.Bytes(), eph.Public) {
		t.Error("Encapped key bytes should equal the ephemeral public key serialization")
	}

	ssRecipient, err := kem.Decap(recipient.Private, enc)
	if err != nil {
		t.Fatalf("Decap failed: %v", err)
	}
	if !bytes.Equal(ssSender, ssRecipient) {
		t.Error("Sender and recipient derived different shared secrets")
	}
}

// TestModeMismatchDivergesWithoutError verifies the RFC-mandated behavior:
// decapsulating with the wrong authentication mode must not error, it must
// silently produce a different secret.
func TestModeMismatchDivergesWithoutError(t *testing.T) {
	for _, tc := range testKEMs {
		t.Run(tc.name, func(t *testing.T) {
			recipient, err := tc.kem.GenerateKeypair(nil)
			if err != nil {
				t.Fatalf("GenerateKeypair failed: %v", err)
			}
			sender, err := tc.kem.GenerateKeypair(nil)
			if err != nil {
				t.Fatalf("GenerateKeypair failed: %v", err)
			}

			// Unauthenticated encap, authenticated decap.
			ssBase, enc, err := tc.kem.Encap(recipient.Public, nil)
			if err != nil {
				t.Fatalf("Encap failed: %v", err)
			}
			ssAuth, err := tc.kem.AuthDecap(recipient.Private, sender.Public, enc)
			if err != nil {
				t.Fatalf("AuthDecap of an unauthenticated encap must not error: %v", err)
			}
			if bytes.Equal(ssBase, ssAuth) {
				t.Error("Mismatched modes produced identical shared secrets")
			}

			// Authenticated encap, unauthenticated decap.
			ssAuthEncap, encAuth, err := tc.kem.AuthEncap(recipient.Public, sender, nil)
			if err != nil {
				t.Fatalf("AuthEncap failed: %v", err)
			}
			ssPlain, err := tc.kem.Decap(recipient.Private, encAuth)
			if err != nil {
				t.Fatalf("Decap of an authenticated encap must not error: %v", err)
			}
			if bytes.Equal(ssAuthEncap, ssPlain) {
				t.Error("Mismatched modes produced identical shared secrets")
			}
		})
	}
}

// TestEncappedKeyRoundTrip verifies that parsing the wire bytes of an
// encapped key reproduces it exactly.
func TestEncappedKeyRoundTrip(t *testing.T) {
	for _, tc := range testKEMs {
		t.Run(tc.name, func(t *testing.T) {
			recipient, err := tc.kem.GenerateKeypair(nil)
			if err != nil {
				t.Fatalf("GenerateKeypair failed: %v", err)
			}
			_, enc, err := tc.kem.Encap(recipient.Public, nil)
			if err != nil {
				t.Fatalf("Encap failed: %v", err)
			}

			parsed, err := tc.kem.ParseEncappedKey(enc.Bytes())
			if err != nil {
				t.Fatalf("ParseEncappedKey failed: %v", err)
			}
			if !bytes.Equal(parsed.Bytes(), enc.Bytes()) {
				t.Error("Encapped key did not survive a serialize/deserialize round trip")
			}
		})
	}
}

// TestTamperedEncappedKey flips single bits of a valid encapped key and
// verifies that decapsulation either fails cleanly or derives a secret
// different from the untampered one. It must never panic.
func TestTamperedEncappedKey(t *testing.T) {
	for _, tc := range testKEMs {
		t.Run(tc.name, func(t *testing.T) {
			recipient, err := tc.kem.GenerateKeypair(nil)
			if err != nil {
				t.Fatalf("GenerateKeypair failed: %v", err)
			}
			ss, enc, err := tc.kem.Encap(recipient.Public, nil)
			if err != nil {
				t.Fatalf("Encap failed: %v", err)
			}

			wire := enc.Bytes()
			positions := []int{0, len(wire) / 2, len(wire) - 1}
			for _, pos := range positions {
				for bit := 0; bit < 8; bit++ {
					if tc.kem == X25519HKDFSHA256 && pos == len(wire)-1 && bit == 7 {
						// X25519 masks the top coordinate bit (RFC 7748), so
						// this flip does not change the point.
						continue
					}
					tampered := make([]byte, len(wire))
					copy(tampered, wire)
					tampered[pos] ^= 1 << bit

					parsed, err := tc.kem.ParseEncappedKey(tampered)
					if err != nil {
						// Rejected at deserialization, which is a valid outcome.
						continue
					}
					ssTampered, err := tc.kem.Decap(recipient.Private, parsed)
					if err != nil {
						// Rejected by the DH exchange, also valid.
						continue
					}
					if bytes.Equal(ss, ssTampered) {
						t.Errorf("Flipping bit %d of byte %d left the shared secret unchanged", bit, pos)
					}
				}
			}
		})
	}
}

// TestEncapRejectsMalformedRecipientKey verifies that wrong-length recipient
// keys fail deserialization before any exchange is attempted.
func TestEncapRejectsMalformedRecipientKey(t *testing.T) {
	for _, tc := range testKEMs {
		t.Run(tc.name, func(t *testing.T) {
			bad := make([]byte, tc.kem.PublicKeySize()-1)
			if _, _, err := tc.kem.Encap(bad, nil); err == nil {
				t.Error("Encap accepted a truncated recipient public key")
			}
			if _, err := tc.kem.ParseEncappedKey(bad); err == nil {
				t.Error("ParseEncappedKey accepted truncated input")
			}
		})
	}
}

// TestKEMSizes verifies the advertised sizes against the group and KDF.
func TestKEMSizes(t *testing.T) {
	for _, tc := range testKEMs {
		t.Run(tc.name, func(t *testing.T) {
			if tc.kem.EncappedKeySize() != tc.kem.PublicKeySize() {
				t.Error("Encapped key size must equal the public key size")
			}
			key, err := tc.kem.GenerateKeypair(nil)
			if err != nil {
				t.Fatalf("GenerateKeypair failed: %v", err)
			}
			if len(key.Public) != tc.kem.PublicKeySize() {
				t.Errorf("Expected %d-byte public key, got %d bytes", tc.kem.PublicKeySize(), len(key.Public))
			}
			if len(key.Private) != tc.kem.PrivateKeySize() {
				t.Errorf("Expected %d-byte private key, got %d bytes", tc.kem.PrivateKeySize(), len(key.Private))
			}
		})
	}
}

// TestConcurrentOperations exercises one KEM value from many goroutines.
// KEM values hold no mutable state, so independent calls must not interfere.
func TestConcurrentOperations(t *testing.T) {
	kem := X25519HKDFSHA256
	recipient, err := kem.GenerateKeypair(nil)
	if err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ssSender, enc, err := kem.Encap(recipient.Public, nil)
			if err != nil {
				errs <- err
				return
			}
			ssRecipient, err := kem.Decap(recipient.Private, enc)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(ssSender, ssRecipient) {
				errs <- errors.New("shared secret mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent round trip failed: %v", err)
	}
}

package password

import (
	"strings"
	"testing"
)

// fastConfig keeps Argon2id cheap so tests stay quick.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	cfg.BcryptCost = 4
	return cfg
}

func TestHashAndVerify_OK(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.Hash("this is a strong password 123!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(h, "$argon2id$v=19$") {
		t.Fatalf("unexpected encoding: %q", h)
	}

	ok, err := cfg.Verify(h, "this is a strong password 123!")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.Hash("this is a strong password 123!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := cfg.Verify(h, "wrong password")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestHash_SaltedOutputDiffers(t *testing.T) {
	for _, alg := range []string{AlgorithmArgon2id, AlgorithmBcrypt} {
		cfg := fastConfig()
		cfg.Algorithm = alg
		hasher := cfg.Hasher()

		a, err := hasher.Hash("same-secret-value")
		if err != nil {
			t.Fatalf("%s Hash: %v", alg, err)
		}
		b, err := hasher.Hash("same-secret-value")
		if err != nil {
			t.Fatalf("%s Hash: %v", alg, err)
		}
		if a == b {
			t.Fatalf("%s: two hashes of the same input must differ", alg)
		}
	}
}

func TestHasher_VerifiesBothEncodings(t *testing.T) {
	bcryptCfg := fastConfig()
	bcryptCfg.Algorithm = AlgorithmBcrypt
	legacy, err := bcryptCfg.Hasher().Hash("remember-secret")
	if err != nil {
		t.Fatalf("bcrypt Hash: %v", err)
	}
	if !strings.HasPrefix(legacy, "$2a$") {
		t.Fatalf("unexpected bcrypt prefix: %q", legacy)
	}

	// An argon2id-configured hasher must still accept bcrypt rows.
	ok, err := fastConfig().Hasher().Verify(legacy, "remember-secret")
	if err != nil || !ok {
		t.Fatalf("expected bcrypt hash to verify, ok=%v err=%v", ok, err)
	}
	ok, err = fastConfig().Hasher().Verify(legacy, "other-secret")
	if err != nil || ok {
		t.Fatalf("expected bcrypt mismatch, ok=%v err=%v", ok, err)
	}
}

func TestHasher_UnsupportedAlgorithm(t *testing.T) {
	cfg := fastConfig()
	cfg.Algorithm = "md5"
	if _, err := cfg.Hasher().Hash("x"); err != ErrUnsupportedAlgorithm {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	cfg := fastConfig()

	for _, enc := range []string{"not-a-hash", "$argon2id$v=18$m=1,t=1,p=1$AA$AA", "$2x$10$abc"} {
		ok, err := cfg.Verify(enc, "whatever")
		if err != ErrInvalidHash {
			t.Fatalf("Verify(%q): expected ErrInvalidHash, got %v", enc, err)
		}
		if ok {
			t.Fatalf("Verify(%q): expected false", enc)
		}
	}
}

func TestVerify_RejectsOversizedParams(t *testing.T) {
	big := fastConfig()
	big.Params.MemoryKiB = 64 * 1024
	h, err := big.Hasher().Hash("secret-secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	small := fastConfig()
	if _, err := small.Verify(h, "secret-secret"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash for params above bounds, got %v", err)
	}
}

func TestValidate_MinMax(t *testing.T) {
	cfg := fastConfig()
	cfg.Policy.MinLength = 12
	cfg.Policy.MaxLength = 16

	if err := cfg.Validate("short"); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := cfg.Validate("this password is definitely too long"); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if err := cfg.Validate("goodpassw0rd!"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestValidate_BcryptByteLimit(t *testing.T) {
	cfg := fastConfig()
	cfg.Algorithm = AlgorithmBcrypt

	// 40 runes, 80 bytes.
	pw := strings.Repeat("é", 40)
	if err := cfg.Validate(pw); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong under bcrypt, got %v", err)
	}

	cfg.Algorithm = AlgorithmArgon2id
	if err := cfg.Validate(pw); err != nil {
		t.Fatalf("expected ok under argon2id, got %v", err)
	}
}

func TestPolicy_RejectVeryWeak(t *testing.T) {
	cfg := fastConfig()
	cfg.Policy.RejectVeryWeak = true
	cfg.Policy.MinLength = 8

	for _, pw := range []string{"password", "11111111", "aaaaaaaaaa", "12345678901"} {
		if err := cfg.Validate(pw); err != ErrWeakPassword {
			t.Fatalf("Validate(%q): expected ErrWeakPassword, got %v", pw, err)
		}
	}
	if err := cfg.Validate("a-very-ok-pass"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

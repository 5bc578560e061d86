package statement

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	fingerprintBytes       = 16
	fingerprintDescription = 100 // runes
)

// Fingerprint hashes the identity of a transaction: its canonical date, its
// absolute amount to two decimals and its lowercased, trimmed description.
// The result is a 32 character hex string.
func Fingerprint(date string, amount decimal.Decimal, description string) string {
	desc := strings.ToLower(strings.TrimSpace(description))
	if r := []rune(desc); len(r) > fingerprintDescription {
		desc = string(r[:fingerprintDescription])
	}

	key := date + "|" + amount.Abs().StringFixed(2) + "|" + desc
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:fingerprintBytes])
}

// FingerprintSet holds the fingerprints already recorded for one account.
type FingerprintSet map[string]struct{}

func NewFingerprintSet(fingerprints ...string) FingerprintSet {
	s := make(FingerprintSet, len(fingerprints))
	for _, f := range fingerprints {
		s.Add(f)
	}

	return s
}

func (s FingerprintSet) Has(fp string) bool {
	_, ok := s[fp]
	return ok
}

func (s FingerprintSet) Add(fp string) {
	s[fp] = struct{}{}
}

// FilterNew returns the candidates whose fingerprint is not in existing, and
// the number of candidates skipped as duplicates. Identical rows within one
// batch are all kept.
func FilterNew(candidates []Candidate, existing FingerprintSet) ([]Candidate, int) {
	fresh := make([]Candidate, 0, len(candidates))
	skipped := 0

	for _, c := range candidates {
		if existing.Has(c.Fingerprint()) {
			skipped++
			continue
		}

		fresh = append(fresh, c)
	}

	return fresh, skipped
}

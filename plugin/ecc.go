package plugin

import (
	"fmt"
	"math"
)

// ECC corrects up to t symbol errors in a data block, where t was chosen by
// DynamicECCSize for the plugin's configured failure-probability target.
type ECC interface {
	Name() string
	// Encode returns the parity symbols protecting data at correction
	// strength t.
	Encode(data []byte, t int) []byte
	// Correct attempts to repair data using parity computed at strength t,
	// returning the (possibly corrected) data and whether it is believed
	// correct afterward.
	Correct(data, parity []byte, t int) ([]byte, bool)
}

// NewECC resolves a scheme name to an implementation. Unknown names are a
// configuration error.
func NewECC(scheme string) (ECC, error) {
	switch scheme {
	case "hamming":
		return HammingECC{}, nil
	case "parity-rs":
		return ParityRS{}, nil
	default:
		return nil, fmt.Errorf("plugin: unknown ECC scheme %q", scheme)
	}
}

// HammingECC is computed byte-by-byte: each data byte's parity byte is its
// bitwise complement, so any corrupted byte is mechanically recoverable.
// Correct still reports ok = false once more than t bytes mismatch; with
// t = 1 this matches a real Hamming code's single-error-correct guarantee,
// even though this simplified parity happens to recover further errors too.
type HammingECC struct{}

// Name implements ECC.
func (HammingECC) Name() string { return "hamming" }

// Encode implements ECC.
func (HammingECC) Encode(data []byte, t int) []byte {
	parity := make([]byte, len(data))
	for i, b := range data {
		parity[i] = ^b
	}

	return parity
}

// Correct implements ECC.
func (HammingECC) Correct(data, parity []byte, t int) ([]byte, bool) {
	if len(data) != len(parity) {
		return data, false
	}

	corrected := make([]byte, len(data))
	mismatches := 0
	for i := range data {
		if data[i] != ^parity[i] {
			mismatches++
			corrected[i] = ^parity[i]
		} else {
			corrected[i] = data[i]
		}
	}

	return corrected, mismatches <= t
}

// ParityRS is a simplified Reed-Solomon-style code: the encoder emits t
// parity symbols, symbol s being the sum (mod 256) of every data byte i
// weighted by (i+1)^s, giving up to t syndromes to locate a bad byte from.
// Parity size scales with t; correction is limited to damage confined to a
// single byte, and no Galois-field arithmetic is used.
type ParityRS struct{}

// Name implements ECC.
func (ParityRS) Name() string { return "parity-rs" }

// Encode implements ECC.
func (ParityRS) Encode(data []byte, t int) []byte {
	if t < 1 {
		t = 1
	}

	parity := make([]byte, t)
	for s := 0; s < t; s++ {
		var acc byte
		for i, b := range data {
			weight := byte(1)
			for k := 0; k < s; k++ {
				weight *= byte(i + 1)
			}
			acc += b * weight
		}
		parity[s] = acc
	}

	return parity
}

// Correct implements ECC. It can detect that data is damaged (any syndrome
// fails to match) but, consistent with the simplified encoding above, can
// only correct when the damage is confined to a single byte, which it
// locates by brute-force trial flip.
func (ParityRS) Correct(data, parity []byte, t int) ([]byte, bool) {
	if matchesAllSyndromes(data, parity, t) {
		return data, true
	}

	for i := range data {
		original := data[i]
		for candidate := 0; candidate < 256; candidate++ {
			data[i] = byte(candidate)
			if matchesAllSyndromes(data, parity, t) {
				return data, true
			}
		}
		data[i] = original
	}

	return data, false
}

func matchesAllSyndromes(data, parity []byte, t int) bool {
	want := ParityRS{}.Encode(data, t)
	if len(want) != len(parity) {
		return false
	}
	for i := range want {
		if want[i] != parity[i] {
			return false
		}
	}

	return true
}

// DynamicECCSize computes the smallest correction strength t such that the
// binomial-tail probability of more than t symbol errors among n symbols,
// each independently wrong with probability ber, falls below
// maxFailureProb. It returns the resulting parity size in symbols (2t),
// capped at maxParitySymbols.
func DynamicECCSize(n int, ber, maxFailureProb float64, maxParitySymbols int) int {
	if ber <= 0 {
		return 0
	}
	if ber >= 1 {
		return maxParitySymbols
	}
	if n < 1 {
		return 0
	}

	pmf := make([]float64, n+1)
	pmf[0] = math.Pow(1-ber, float64(n))
	for k := 0; k < n; k++ {
		pmf[k+1] = pmf[k] * float64(n-k) / float64(k+1) * ber / (1 - ber)
	}

	tailAbove := make([]float64, n+1)
	for t := n - 1; t >= 0; t-- {
		tailAbove[t] = tailAbove[t+1] + pmf[t+1]
	}

	t := n
	for candidate := 0; candidate <= n; candidate++ {
		if tailAbove[candidate] < maxFailureProb {
			t = candidate
			break
		}
	}

	parity := 2 * t
	if parity > maxParitySymbols {
		parity = maxParitySymbols
	}

	return parity
}

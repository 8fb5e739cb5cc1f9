package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumEDCDetectsCorruption(t *testing.T) {
	edc := ChecksumEDC{}
	data := []byte{1, 2, 3, 4}
	code := edc.Compute(data)

	assert.True(t, edc.Verify(data, code))

	data[0] ^= 0xFF
	assert.False(t, edc.Verify(data, code))
}

func TestCRC32EDCDetectsCorruption(t *testing.T) {
	edc := CRC32EDC{}
	data := []byte("dram-block-payload")
	code := edc.Compute(data)

	assert.True(t, edc.Verify(data, code))

	data[3] ^= 0x01
	assert.False(t, edc.Verify(data, code))
}

func TestHammingCorrectsSingleSymbolError(t *testing.T) {
	ecc := HammingECC{}
	data := []byte{0x12, 0x34, 0x56, 0x78}
	parity := ecc.Encode(data, 1)

	corrupted := append([]byte{}, data...)
	corrupted[2] ^= 0xFF

	corrected, ok := ecc.Correct(corrupted, parity, 1)
	assert.True(t, ok)
	assert.Equal(t, data, corrected)
}

func TestParityRSCorrectsSingleByteError(t *testing.T) {
	ecc := ParityRS{}
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	parity := ecc.Encode(data, 2)

	corrupted := append([]byte{}, data...)
	corrupted[1] ^= 0x3C

	corrected, ok := ecc.Correct(corrupted, parity, 2)
	assert.True(t, ok)
	assert.Equal(t, data, corrected)
}

func TestDynamicECCSizeGrowsWithErrorRate(t *testing.T) {
	lowBER := DynamicECCSize(4096, 1e-6, 1e-9, 64)
	highBER := DynamicECCSize(4096, 1e-3, 1e-9, 64)

	assert.LessOrEqual(t, lowBER, highBER)
	assert.LessOrEqual(t, highBER, 64)
}

func TestDynamicECCSizeZeroWhenNoErrorExpected(t *testing.T) {
	assert.Equal(t, 0, DynamicECCSize(4096, 0, 1e-9, 64))
}

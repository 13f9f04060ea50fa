package xmodem

import (
	"math/rand"
	"testing"
)

func TestCRC16(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x0000,
		},
		{
			name:     "check value",
			data:     []byte("123456789"),
			expected: 0x31C3,
		},
		{
			name:     "single byte",
			data:     []byte{0x01},
			expected: 0x1021,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CRC16(tt.data); got != tt.expected {
				t.Errorf("CRC16() = 0x%04X, want 0x%04X", got, tt.expected)
			}
			if got := CRC16Table(tt.data); got != tt.expected {
				t.Errorf("CRC16Table() = 0x%04X, want 0x%04X", got, tt.expected)
			}
		})
	}
}

func TestCRC16RoutinesAgree(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	block := make([]byte, BlockSize)
	for i := 0; i < 64; i++ {
		r.Read(block)
		if a, b := CRC16(block), CRC16Table(block); a != b {
			t.Fatalf("iteration %d: CRC16=0x%04X CRC16Table=0x%04X", i, a, b)
		}
	}
}

func BenchmarkCRC16(b *testing.B) {
	data := make([]byte, BlockSize)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CRC16(data)
	}
}

func BenchmarkCRC16Table(b *testing.B) {
	data := make([]byte, BlockSize)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CRC16Table(data)
	}
}

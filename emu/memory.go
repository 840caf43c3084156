package emu

import "fmt"

// WordSize is the width of a memory word in bytes.
const WordSize = 8

// NumMemoryWords is the number of words in data memory.
const NumMemoryWords = 8

// Memory is a small word-addressed data memory holding float64 values.
// Addresses are byte offsets; a byte address selects word address/WordSize.
type Memory struct {
	words [NumMemoryWords]float64
}

// NewMemory creates a memory with every word set to InitialFPValue.
func NewMemory() *Memory {
	m := &Memory{}
	m.Reset()
	return m
}

// Reset restores every word to InitialFPValue.
func (m *Memory) Reset() {
	for i := range m.words {
		m.words[i] = InitialFPValue
	}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() int64 {
	return NumMemoryWords * WordSize
}

// WordIndex converts a byte address into a word index.
func (m *Memory) WordIndex(addr int64) (int, error) {
	if addr < 0 || addr >= m.Size() {
		return 0, fmt.Errorf("address %d outside memory [0, %d)", addr, m.Size())
	}
	return int(addr / WordSize), nil
}

// Read returns the word containing the byte address. Out-of-range
// addresses read as 0.
func (m *Memory) Read(addr int64) float64 {
	idx, err := m.WordIndex(addr)
	if err != nil {
		return 0
	}
	return m.words[idx]
}

// Write stores value into the word containing the byte address. Writes to
// out-of-range addresses are ignored.
func (m *Memory) Write(addr int64, value float64) {
	idx, err := m.WordIndex(addr)
	if err != nil {
		return
	}
	m.words[idx] = value
}

// Words returns a copy of all memory words.
func (m *Memory) Words() []float64 {
	out := make([]float64, NumMemoryWords)
	copy(out, m.words[:])
	return out
}

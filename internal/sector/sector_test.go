package sector

import "testing"

// TestAlignUp tests grain rounding across boundary conditions
func TestAlignUp(t *testing.T) {
	testCases := []struct {
		name     string
		n        uint64
		align    uint64
		expected uint64
	}{
		{"Zero", 0, DefaultGrain, 0},
		{"Already Aligned", 2 << 20, DefaultGrain, 2 << 20},
		{"One Below Boundary", (1 << 20) - 1, DefaultGrain, 1 << 20},
		{"One Above Boundary", (1 << 20) + 1, DefaultGrain, 2 << 20},
		{"Sector Alignment", 10_000_000, LogicalSize, 10_000_384},
		{"Zero Alignment Passthrough", 12345, 0, 12345},
		{"Ten MB Boot Region", 11_048_576, DefaultGrain, 11_534_336},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AlignUp(tc.n, tc.align); got != tc.expected {
				t.Errorf("AlignUp(%d, %d) = %d, want %d", tc.n, tc.align, got, tc.expected)
			}
		})
	}
}

// TestSectorsFor tests the sector count needed for arbitrary byte lengths
func TestSectorsFor(t *testing.T) {
	testCases := []struct {
		name     string
		n        uint64
		expected uint64
	}{
		{"Zero", 0, 0},
		{"One Byte", 1, 1},
		{"Exact Sector", LogicalSize, 1},
		{"Sector Plus One", LogicalSize + 1, 2},
		{"Large Odd Size", 5_000_000, 9766},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SectorsFor(tc.n); got != tc.expected {
				t.Errorf("SectorsFor(%d) = %d, want %d", tc.n, got, tc.expected)
			}
		})
	}
}

// TestSectorByteConversions tests that sector and byte conversions invert
func TestSectorByteConversions(t *testing.T) {
	if got := SectorsToBytes(2048); got != 1<<20 {
		t.Errorf("SectorsToBytes(2048) = %d, want %d", got, 1<<20)
	}
	if got := BytesToSectors(1 << 20); got != 2048 {
		t.Errorf("BytesToSectors(1 MiB) = %d, want 2048", got)
	}
	for _, s := range []uint64{0, 1, 33, 2048} {
		if got := BytesToSectors(SectorsToBytes(s)); got != s {
			t.Errorf("round trip of %d sectors = %d", s, got)
		}
	}
}

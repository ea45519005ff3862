// Package util holds helpers for looking at raw image bytes.
package util

import (
	"fmt"
	"strings"
)

// DumpByteSlice dump a byte slice in hex and optionally ASCII format.
// Optionally put position at the beginning of each row, like xxd.
// Optionally convert to ASCII at end of each row, like xxd.
// Can show positions at beginning of each row in hex, decimal or both.
// Can filter out all rows except those containing given positions in showOnlyBytes. If showOnlyBytes is nil, all rows are shown.
// If showOnlyBytes is not nil, even an empty slice, will only show those rows that contain the given positions.
func DumpByteSlice(b []byte, bytesPerRow int, showASCII, showPosHex, showPosDec bool, showOnlyBytes []int) string {
	return dump(b, 0, bytesPerRow, showASCII, showPosHex, showPosDec, showOnlyBytes)
}

// DumpBlock dumps one block of a device the way DumpByteSlice does, with 16 bytes per row, ASCII on,
// and positions counted in hex from base, the byte offset of the block on the device.
// Rows of nothing but zeroes after the first are collapsed into a single "*" line, like hexdump.
func DumpBlock(b []byte, base int64) string {
	const perRow = 16
	var (
		out       strings.Builder
		collapsed bool
	)
	for first := 0; first < len(b); first += perRow {
		last := min(first+perRow, len(b))
		if first > 0 && allZero(b[first:last]) {
			if !collapsed {
				out.WriteString("*\n")
				collapsed = true
			}
			continue
		}
		collapsed = false
		out.WriteString(dump(b[first:last], base+int64(first), perRow, true, true, false, nil))
	}
	return out.String()
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func dump(b []byte, base int64, bytesPerRow int, showASCII, showPosHex, showPosDec bool, showOnlyBytes []int) string {
	showOnlyMap := make(map[int]bool, len(showOnlyBytes))
	for _, v := range showOnlyBytes {
		showOnlyMap[v] = true
	}
	var out strings.Builder
	for firstByte := 0; firstByte < len(b); firstByte += bytesPerRow {
		lastByte := firstByte + bytesPerRow
		// filtered out unless the row holds one of the positions asked for
		if showOnlyBytes != nil && !rowContains(showOnlyMap, firstByte, lastByte) {
			continue
		}
		out.WriteString(dumpRow(b, base, firstByte, lastByte, showASCII, showPosHex, showPosDec, showOnlyMap))
	}
	return out.String()
}

func rowContains(positions map[int]bool, first, last int) bool {
	for j := first; j < last; j++ {
		if positions[j] {
			return true
		}
	}
	return false
}

func dumpRow(b []byte, base int64, firstByte, lastByte int, showASCII, showPosHex, showPosDec bool, highlight map[int]bool) string {
	var (
		row   strings.Builder
		ascii = make([]byte, 0, lastByte-firstByte)
	)
	if showPosHex {
		fmt.Fprintf(&row, "%08x ", base+int64(firstByte))
	}
	if showPosDec {
		fmt.Fprintf(&row, "%4d ", base+int64(firstByte))
	}
	row.WriteString(": ")
	for j := firstByte; j < lastByte; j++ {
		// every 8 bytes add extra spacing to make it easier to read
		if j%8 == 0 {
			row.WriteByte(' ')
		}
		switch {
		case j >= len(b):
			row.WriteString("   ")
			ascii = append(ascii, ' ')
			continue
		case highlight[j]:
			fmt.Fprintf(&row, "\033[1m\033[31m %02x\033[0m", b[j])
		default:
			fmt.Fprintf(&row, " %02x", b[j])
		}
		if b[j] < 32 || b[j] > 126 {
			ascii = append(ascii, '.')
		} else {
			ascii = append(ascii, b[j])
		}
	}
	if showASCII {
		fmt.Fprintf(&row, "  %s", ascii)
	}
	row.WriteByte('\n')
	return row.String()
}

// diff one position where two byte slices differ
type diff struct {
	Offset int
	ByteA  byte
	ByteB  byte
}

// compareByteSlices compares two byte slices position by position. If the byte slices are identical, diffs is length 0,
// otherwise it contains the positions of the differences.
func compareByteSlices(a, b []byte) (diffs []diff) {
	for i := 0; i < max(len(a), len(b)); i++ {
		var ba, bb byte
		if i < len(a) {
			ba = a[i]
		}
		if i < len(b) {
			bb = b[i]
		}
		if ba != bb || (i >= len(a)) != (i >= len(b)) {
			diffs = append(diffs, diff{Offset: i, ByteA: ba, ByteB: bb})
		}
	}
	return diffs
}

// DumpByteSlicesWithDiffs show two byte slices in hex and ASCII format, with differences highlighted.
// Only the rows holding a difference are shown.
func DumpByteSlicesWithDiffs(a, b []byte, bytesPerRow int, showASCII, showPosHex, showPosDec bool) (different bool, out string) {
	diffs := compareByteSlices(a, b)
	if len(diffs) == 0 {
		return false, ""
	}

	showOnlyBytes := make([]int, len(diffs))
	for i, d := range diffs {
		showOnlyBytes[i] = d.Offset
	}
	out = DumpByteSlice(a, bytesPerRow, showASCII, showPosHex, showPosDec, showOnlyBytes)
	out += "\n"
	out += DumpByteSlice(b, bytesPerRow, showASCII, showPosHex, showPosDec, showOnlyBytes)
	return true, out
}

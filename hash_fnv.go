// hash_fnv.go - FNV-1a 64 primitives shared by the state-hash and
// output-hash modes. Stdlib only: no pack example reaches for a hashing
// library for a plain non-cryptographic FNV mix, so none is introduced here
// (see DESIGN.md).
package main

import "encoding/binary"

const (
	fnv1a64OffsetBasis uint64 = 0xCBF29CE484222325
	fnv1a64Prime       uint64 = 0x100000001B3
)

// fnv1aBytes hashes a byte slice with FNV-1a 64. fnv1aBytes(nil) returns the
// offset basis unchanged.
func fnv1aBytes(data []byte) uint64 {
	h := fnv1a64OffsetBasis
	for _, b := range data {
		h ^= uint64(b)
		h *= fnv1a64Prime
	}
	return h
}

// fnv1aExtend mixes one more 64-bit value into an existing hash by
// extending it as 8 little-endian bytes, used to fold a per-frame hash into
// the running aggregate.
func fnv1aExtend(h uint64, v uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	for _, b := range buf {
		h ^= uint64(b)
		h *= fnv1a64Prime
	}
	return h
}

// hashPixelRows computes the canonical row-wise FNV-1a 64 hash of an RGBA8
// image of width w, height h, row stride stride (bytes), iterating
// top-to-bottom unless bottomToTop is set (GL readbacks are bottom-left
// origin). Only the first w*4 bytes of each row are hashed, so stride may
// exceed the tight row size.
func hashPixelRows(pixels []byte, w, h, stride int, bottomToTop bool) uint64 {
	rowBytes := w * 4
	acc := fnv1a64OffsetBasis
	for i := 0; i < h; i++ {
		row := i
		if bottomToTop {
			row = h - 1 - i
		}
		start := row * stride
		end := start + rowBytes
		if start < 0 || end > len(pixels) {
			continue
		}
		for _, b := range pixels[start:end] {
			acc ^= uint64(b)
			acc *= fnv1a64Prime
		}
	}
	return acc
}

// Package hash provides the checksum used by persisted tile libraries.
//
// Library files end in a CRC32-Castagnoli (CRC32C) of everything before the
// trailer. Go's hash/crc32 uses SSE4.2 or the ARM CRC extension when present.
package hash

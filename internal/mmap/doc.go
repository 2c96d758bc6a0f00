// Package mmap maps library files read-only into memory.
//
// On unix platforms the file is mapped with mmap(2); elsewhere it is read into
// a heap buffer with the same API.
package mmap

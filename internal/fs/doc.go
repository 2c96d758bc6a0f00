// Package fs abstracts the file operations behind atomic blob writes so tests
// can inject failures.
//
// Production code uses [Default]. Tests wrap it in a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.SetLimit(1024) // fail after 1KB written
//
// Operations take no context.Context; local syscalls cannot be interrupted.
// Remote stores go through blobstore.BlobStore, which does.
package fs

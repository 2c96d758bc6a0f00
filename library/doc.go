// Package library builds, stores and loads tile libraries.
//
// A Library is a set of equally sized square tiles flattened to sample
// vectors. Libraries are built from decoded images (FromImages), from an
// image directory (FromDir), or from the built-in glyph set (ASCII), and are
// persisted to any blobstore.BlobStore with Save and Load.
package library

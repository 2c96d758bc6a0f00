// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Uploads go through the S3 transfer manager so large tile libraries are
// split into multipart uploads automatically.
package s3

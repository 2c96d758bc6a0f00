// Package minio implements blobstore.BlobStore on MinIO and other
// S3-compatible object stores.
//
//	client, _ := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(key, secret, ""),
//	})
//	store := tmminio.NewStore(client, "mosaics", "libraries/")
package minio

// Package cache keeps whole immutable blobs, such as tile libraries fetched
// from object storage, in memory or on local disk.
//
// [LRU] bounds entries by total bytes and can charge them to a
// resource.Controller memory budget. [Disk] persists entries across
// processes and rebuilds its index from the cache directory on start.
package cache

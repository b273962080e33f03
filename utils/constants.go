package utils

// SnapshotCachePrefix is the prefix used for Redis availability snapshot keys.
const SnapshotCachePrefix = "availability:snapshot:"

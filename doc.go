// Package bitcache links opaque build artifacts (bitstreams) to the content
// hash of the source that produced them, using a remote git repository as the
// durable store and distribution channel.
//
// The store holds a single JSON metadata index mapping source digests to
// artifact records, plus the artifact binaries themselves. Every operation
// works on a fresh clone of the remote — there is no local state between
// invocations — and publishes optimistically: if the remote advanced between
// clone and push, the whole write is retried against a fresh clone.
//
// Publishing an artifact:
//
//	store := gitstore.New("git@example.com:team/bitcache.git")
//	res, err := bitcache.Publish(ctx, store, bitcache.PublishRequest{
//		SourcePath:    "design.v",
//		BitstreamPath: "design.bit",
//		TargetDir:     "builds/lab1",
//	})
//
// Retrieving it on another machine:
//
//	got, err := bitcache.Get(ctx, store, bitcache.GetRequest{
//		Digest:  res.Digest,
//		DestDir: ".",
//	})
//
// Concurrent publishers never lock the remote; safety comes from
// fetch-modify-fast-forward-or-retry. Two publishes of different digests both
// land eventually, and a publish never force-overwrites the remote tip.
package bitcache

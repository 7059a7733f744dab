// Package bloomprobe is an in-process client for bucketed order stores
// guarded by 16-bit Bloom summaries.
//
// Every bucket of orders is summarized by one descriptor: its serial and a
// 16-bit Bloom word. A lookup derives a probe from the user id, keeps the
// buckets whose summary may contain it, fetches at most MaxBuckets of them
// in descriptor order and returns the orders that match exactly.
//
// Writing:
//
//	client, _ := bloomprobe.New(ctx, bloomprobe.WithValkey("localhost:6379", ""))
//	defer client.Close()
//	_ = client.PutBucket(ctx, bloomprobe.Bucket{Serial: 0x42, Orders: orders})
//	_ = client.SaveDescriptors(ctx, []bloomprobe.Descriptor{{Serial: 0x42, Bloom: 0x1402}})
//
// Reading:
//
//	res, _ := client.Orders(ctx, 3776)
//	if res.Truncated {
//	    // more buckets matched than were fetched
//	}
package bloomprobe

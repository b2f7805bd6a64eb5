// Package searchr is an embeddable Go client for a searchr deployment.
//
// The client talks to the same primary store and index queue as the
// searchr server, so every mutation it makes is picked up by the running
// sync daemon. Search and IndexStatus open the committed index read-only,
// which only succeeds while no serve or indexd process holds it; against a
// live deployment use the REST API for those.
//
//	client, _ := searchr.New(ctx,
//	    searchr.WithDatabase("data/searchr.db"),
//	    searchr.WithRedis("localhost:6379", ""),
//	    searchr.WithIndexDir("data/index"),
//	)
//	defer client.Close()
//
//	tag, _ := client.Tags().Create(ctx, "reports", "")
//	doc, _ := client.Documents().Create(ctx, "Q2 report", "Revenue grew", tag.ID)
//	res, _ := client.Search(ctx, "title:report", searchr.SearchOptions{PerPage: 10})
package searchr

// Package pagination turns the repository's paged query API into a
// lazy pull-based stream of documents.
//
// The repository answers a paged query with a JSON object carrying an
// "entries" array and an "isNextPageAvailable" flag. Fetcher issues one
// GET per page; Stream composes repeated fetches into a single forward
// traversal that ends when the server reports no further page.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(nuxClient)
//	stream := fetcher.Stream(url, params)
//	for {
//		doc, ok, err := stream.Next(ctx)
//		if err != nil || !ok {
//			break
//		}
//		fmt.Println(doc.UID(), doc.Path())
//	}
//
// A Stream is one-shot: once consumed (or failed) it cannot be rewound.
// Re-iterating from page zero requires a fresh Stream.
package pagination

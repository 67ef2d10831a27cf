/*
Package signing implements the request signature expected by the SnapTrade API.

Step 1: encode the query. Parameters keep the order in which the caller added them (the client
always adds `timestamp`, `clientId`, then `userId`/`userSecret`, then endpoint parameters). Each
name and value is form-encoded the way a browser's URLSearchParams does it: `A-Z a-z 0-9 * - . _`
are kept, space becomes `+`, every other byte of the UTF-8 encoding becomes `%XX`. Pairs are
joined with `&`. The encoded string is both signed and sent as the raw query.

Step 2: build the signing object

	{"content": <JSON body or null>, "path": "<endpoint path>", "query": "<encoded query>"}

and serialize it canonically:

  - collect every object key that appears anywhere in the object, at any depth and inside arrays;
  - sort that set once, comparing UTF-16 code units;
  - write every object with its keys in that global order, no insignificant whitespace;
  - strings and numbers are written the way JSON.stringify writes them.

Step 3: escape the consumer key with encodeURI rules (reserved characters such as `&`, `=` and
`/` are kept; space, `%`, non-ASCII and the like are percent-encoded).

Step 4: sig = base64(hmacsha256(escapedKey, canonical)), sent in the `Signature` header.
*/
package signing

// Package transport builds the HTTP client used by the crawler.
//
// Requests go out directly by default. When a SOCKS5 proxy is configured,
// every connection is dialed through it with golang.org/x/net/proxy, and
// CheckProxy can verify before a crawl that the address really speaks SOCKS5.
package transport

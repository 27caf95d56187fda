// Package batch lets a tool act on several IDs in one call.
//
// An ID parameter may be a single string, a comma-separated string or a JSON
// array of strings. Each ID is processed independently and failures are
// reported per item instead of failing the whole call.
package batch

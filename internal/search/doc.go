// Package search queries a Programmable Search Engine through the Custom
// Search JSON API. Requests are authenticated with an API key, not a user
// token.
package search

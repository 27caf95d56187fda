// Package gmail wraps the Gmail API for searching, reading, sending and
// labeling messages.
//
// Clients are created per request with the client options of the
// authenticated user:
//
//	client, err := gmail.NewClient(ctx, opts...)
//	if err != nil {
//	    return err
//	}
//	messages, err := client.SearchMessages(ctx, "is:unread from:boss@example.com", 10)
//
// Outgoing mail is built as RFC 2822 text with RFC 2047 encoded subjects and
// the account's send-as signature appended. Replies keep Gmail threading by
// setting the thread id together with In-Reply-To and References headers.
package gmail

// Package docs provides a client for the Google Docs API.
//
// Documents are found through the Drive API, read through the Docs API and
// converted to Markdown or plain text. Tabbed documents are supported.
//
// Example usage:
//
//	client, err := docs.NewClient(ctx, option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//
//	markdown, err := client.GetDocumentContent(ctx, "1ABC123xyz", docs.FormatMarkdown)
package docs

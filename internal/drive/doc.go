// Package drive provides a client for the Google Drive API.
//
// It covers searching and listing files, reading file content (Google Docs,
// Sheets and Slides are exported to text first) and creating files.
//
//	client, err := drive.NewClient(ctx, opts...)
//	if err != nil {
//	    return err
//	}
//	files, next, err := client.ListFiles(ctx, &drive.ListOptions{
//	    Query:    drive.SearchQuery("quarterly report"),
//	    PageSize: 10,
//	})
package drive

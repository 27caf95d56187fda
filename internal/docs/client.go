package docs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Client wraps the Docs and Drive services
type Client struct {
	docsService  *docs.Service
	driveService *drive.Service
}

// NewClient creates a Docs client. Both services share opts.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	docsService, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{docsService: docsService, driveService: driveService}, nil
}

// SearchDocuments finds Google Docs whose name contains query.
func (c *Client) SearchDocuments(ctx context.Context, query string, pageSize int64) ([]DocumentMetadata, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is required")
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	escaped := strings.ReplaceAll(strings.ReplaceAll(query, `\`, `\\`), `'`, `\'`)
	q := fmt.Sprintf("name contains '%s' and mimeType='%s' and trashed=false", escaped, DocumentMimeType)

	list, err := c.driveService.Files.List().
		Context(ctx).
		Q(q).
		PageSize(pageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Fields("files(id, name, mimeType, createdTime, modifiedTime, webViewLink, owners)").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	results := make([]DocumentMetadata, 0, len(list.Files))
	for _, file := range list.Files {
		metadata := DocumentMetadata{
			ID:           file.Id,
			Name:         file.Name,
			MimeType:     file.MimeType,
			CreatedTime:  file.CreatedTime,
			ModifiedTime: file.ModifiedTime,
			WebViewLink:  file.WebViewLink,
		}
		for _, owner := range file.Owners {
			metadata.Owners = append(metadata.Owners, User{
				DisplayName:  owner.DisplayName,
				EmailAddress: owner.EmailAddress,
			})
		}
		results = append(results, metadata)
	}
	return results, nil
}

// GetDocument retrieves a Google Doc including the content of all tabs.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	if documentID == "" {
		return nil, errors.New("documentID is required")
	}

	// includeTabsContent fills document.tabs for tabbed docs, legacy docs keep document.body
	doc, err := c.docsService.Documents.Get(documentID).Context(ctx).IncludeTabsContent(true).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}

	return doc, nil
}

// GetDocumentContent renders a document as Markdown or plain text.
func (c *Client) GetDocumentContent(ctx context.Context, documentID string, format Format) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatText:
		return DocumentToPlainText(doc)
	case FormatMarkdown, "":
		return DocumentToMarkdown(doc)
	default:
		return "", fmt.Errorf("unsupported format %q, use %q or %q", format, FormatMarkdown, FormatText)
	}
}

// CreateDocument creates a document and, when content is given, inserts it as the body.
func (c *Client) CreateDocument(ctx context.Context, title, content string) (*DocumentInfo, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}

	doc, err := c.docsService.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	info := &DocumentInfo{
		ID:         doc.DocumentId,
		Title:      doc.Title,
		RevisionID: doc.RevisionId,
		URL:        DocumentURL(doc.DocumentId),
	}
	if content == "" {
		return info, nil
	}

	resp, err := c.batchUpdate(ctx, doc.DocumentId, &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: 1},
			Text:     content,
		},
	})
	if err != nil {
		return info, fmt.Errorf("document %s created but content could not be added: %w", doc.DocumentId, err)
	}
	if resp.WriteControl != nil {
		info.RevisionID = resp.WriteControl.RequiredRevisionId
	}
	return info, nil
}

// ModifyText applies edit to a document.
func (c *Client) ModifyText(ctx context.Context, documentID string, edit TextEdit) (*EditResult, error) {
	if documentID == "" {
		return nil, errors.New("documentID is required")
	}

	var req *docs.Request
	switch {
	case edit.Find != "":
		req = &docs.Request{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{
					Text:      edit.Find,
					MatchCase: edit.MatchCase,
				},
				ReplaceText: edit.Text,
			},
		}
	case edit.Text == "":
		return nil, errors.New("text is required")
	case edit.Index > 0:
		req = &docs.Request{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: edit.Index},
				Text:     edit.Text,
			},
		}
	default:
		req = &docs.Request{
			InsertText: &docs.InsertTextRequest{
				EndOfSegmentLocation: &docs.EndOfSegmentLocation{},
				Text:                 edit.Text,
			},
		}
	}

	resp, err := c.batchUpdate(ctx, documentID, req)
	if err != nil {
		return nil, err
	}

	result := &EditResult{
		DocumentInfo: DocumentInfo{ID: documentID, URL: DocumentURL(documentID)},
		Inserted:     req.InsertText != nil,
	}
	if resp.WriteControl != nil {
		result.RevisionID = resp.WriteControl.RequiredRevisionId
	}
	for _, reply := range resp.Replies {
		if reply != nil && reply.ReplaceAllText != nil {
			result.Replacements += reply.ReplaceAllText.OccurrencesChanged
		}
	}
	return result, nil
}

func (c *Client) batchUpdate(ctx context.Context, documentID string, requests ...*docs.Request) (*docs.BatchUpdateDocumentResponse, error) {
	resp, err := c.docsService.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update document %s: %w", documentID, err)
	}
	return resp, nil
}

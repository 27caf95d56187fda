package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// MaxContentBytes limits how much of a file GetFileContent reads.
	MaxContentBytes = 512 * 1024

	maxPageSize = 1000

	fileFields = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, webContentLink, parents, owners, shared, trashed, trashedTime"
)

// exportFormats maps Google Workspace MIME types to the text format they are exported as.
var exportFormats = map[string]string{
	"application/vnd.google-apps.document":     "text/plain",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
	"application/vnd.google-apps.presentation": "text/plain",
	"application/vnd.google-apps.drawing":      "image/svg+xml",
	"application/vnd.google-apps.script":       "application/vnd.google-apps.script+json",
}

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
}

// NewClient creates a Drive client from authenticated client options.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: service}, nil
}

// buildListFilesQuery combines a user query with the trash filter.
func buildListFilesQuery(userQuery string, includeTrashed bool) string {
	switch {
	case includeTrashed:
		return userQuery
	case userQuery == "":
		return "trashed=false"
	default:
		return "(" + userQuery + ") and trashed=false"
	}
}

// SearchQuery turns free text into a Drive fullText query. Input that
// already uses the Drive query language is returned unchanged.
func SearchQuery(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for _, op := range []string{" contains ", "=", " in ", " has ", "<", ">"} {
		if strings.Contains(text, op) {
			return text
		}
	}
	return "fullText contains '" + escapeQueryValue(text) + "'"
}

// FolderQuery lists the direct children of a folder.
func FolderQuery(folderID string) string {
	if folderID == "" {
		folderID = "root"
	}
	return "'" + escapeQueryValue(folderID) + "' in parents"
}

func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

// ListFiles returns one page of files and the token of the next page.
func (c *Client) ListFiles(ctx context.Context, options *ListOptions) ([]*FileInfo, string, error) {
	if options == nil {
		options = &ListOptions{}
	}

	call := c.service.Files.List().
		Context(ctx).
		Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")"))

	if q := buildListFilesQuery(options.Query, options.IncludeTrashed); q != "" {
		call = call.Q(q)
	}
	if options.PageSize > 0 {
		call = call.PageSize(int64(min(options.PageSize, maxPageSize)))
	}
	if options.OrderBy != "" {
		call = call.OrderBy(options.OrderBy)
	}
	if options.PageToken != "" {
		call = call.PageToken(options.PageToken)
	}
	if options.IncludeSharedDrives {
		call = call.SupportsAllDrives(true).IncludeItemsFromAllDrives(true).Corpora("allDrives")
	}

	fileList, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list files: %w", err)
	}

	files := make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = toFileInfo(f)
	}

	return files, fileList.NextPageToken, nil
}

// GetFile returns a file's metadata including its permissions.
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, errors.New("fileID is required")
	}

	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(googleapi.Field(fileFields + ", permissions")).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return toFileInfo(file), nil
}

// GetFileContent reads up to MaxContentBytes of a file. Google Workspace
// files are exported, everything else is downloaded as is.
func (c *Client) GetFileContent(ctx context.Context, fileID string) (*FileContent, error) {
	info, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	result := &FileContent{File: info}

	var body io.ReadCloser
	if format, ok := exportFormats[info.MimeType]; ok {
		resp, err := c.service.Files.Export(fileID, format).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("failed to export file %s: %w", fileID, err)
		}
		body = resp.Body
		result.ExportedAs = format
	} else if info.IsFolder() {
		return nil, fmt.Errorf("%s is a folder, list its items instead", fileID)
	} else {
		resp, err := c.service.Files.Get(fileID).Context(ctx).SupportsAllDrives(true).Download()
		if err != nil {
			return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
		}
		body = resp.Body
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxContentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	if len(data) > MaxContentBytes {
		data = trimPartialRune(data[:MaxContentBytes])
		result.Truncated = true
	}
	result.Size = len(data)

	if utf8.Valid(data) {
		result.Content = string(data)
	} else {
		result.Binary = true
	}
	return result, nil
}

// trimPartialRune drops an incomplete UTF-8 sequence cut off by truncation.
func trimPartialRune(data []byte) []byte {
	for i := 0; i < utf8.UTFMax-1 && len(data) > 0; i++ {
		if r, size := utf8.DecodeLastRune(data); r != utf8.RuneError || size > 1 {
			return data
		}
		data = data[:len(data)-1]
	}
	return data
}

// UploadFile creates a file from content.
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader, options *UploadOptions) (*FileInfo, error) {
	if name == "" {
		return nil, errors.New("file name is required")
	}
	if content == nil {
		return nil, errors.New("file content is required")
	}

	file := &drive.File{Name: name}
	if options != nil {
		file.Parents = options.Parents
		file.Description = options.Description
		file.MimeType = options.MimeType
	}

	driveFile, err := c.service.Files.Create(file).
		Context(ctx).
		SupportsAllDrives(true).
		Media(content, googleapi.ContentType(file.MimeType)).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return toFileInfo(driveFile), nil
}

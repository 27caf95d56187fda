package drive

import (
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
)

const workspaceMimePrefix = "application/vnd.google-apps."

// FileInfo is the metadata returned for files and folders.
type FileInfo struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	MimeType       string       `json:"mimeType"`
	Size           int64        `json:"size,omitempty"` // zero for folders and Workspace files
	CreatedTime    time.Time    `json:"createdTime,omitzero"`
	ModifiedTime   time.Time    `json:"modifiedTime,omitzero"`
	WebViewLink    string       `json:"webViewLink,omitempty"`
	WebContentLink string       `json:"webContentLink,omitempty"`
	Parents        []string     `json:"parents,omitempty"`
	Owners         []User       `json:"owners,omitempty"`
	Shared         bool         `json:"shared"`
	Trashed        bool         `json:"trashed,omitempty"`
	TrashedTime    *time.Time   `json:"trashedTime,omitempty"`
	Permissions    []Permission `json:"permissions,omitempty"`
}

// IsFolder reports whether the item is a Drive folder.
func (f *FileInfo) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// IsWorkspaceFile reports whether the item is a native Docs, Sheets, Slides
// or other Google file that has no binary content of its own.
func (f *FileInfo) IsWorkspaceFile() bool {
	return strings.HasPrefix(f.MimeType, workspaceMimePrefix) && !f.IsFolder()
}

type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Permission is one grant on a file. EmailAddress is set for user and group
// grants, Domain for domain grants.
type Permission struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Role         string `json:"role"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Domain       string `json:"domain,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

// ListOptions filters Files.List. Query uses the Drive query language;
// trashed files are excluded unless IncludeTrashed is set.
type ListOptions struct {
	Query               string
	PageSize            int
	OrderBy             string
	PageToken           string
	IncludeTrashed      bool
	IncludeSharedDrives bool
}

// UploadOptions configures a new file. An empty MimeType lets Drive detect it.
type UploadOptions struct {
	Parents     []string
	Description string
	MimeType    string
}

// FileContent is the readable content of a file. Google Workspace files are
// exported to a text format first.
type FileContent struct {
	File *FileInfo `json:"file"`

	// ExportedAs is the MIME type the content was exported to, empty for regular files
	ExportedAs string `json:"exportedAs,omitempty"`

	Content   string `json:"content,omitempty"`
	Binary    bool   `json:"binary,omitempty"`
	Truncated bool   `json:"truncated,omitempty"` // content exceeded MaxContentBytes
	Size      int    `json:"size"`
}

func toFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:             f.Id,
		Name:           f.Name,
		MimeType:       f.MimeType,
		Size:           f.Size,
		CreatedTime:    parseTime(f.CreatedTime),
		ModifiedTime:   parseTime(f.ModifiedTime),
		WebViewLink:    f.WebViewLink,
		WebContentLink: f.WebContentLink,
		Parents:        f.Parents,
		Shared:         f.Shared,
		Trashed:        f.Trashed,
	}
	if t := parseTime(f.TrashedTime); !t.IsZero() {
		info.TrashedTime = &t
	}
	for _, owner := range f.Owners {
		info.Owners = append(info.Owners, User{DisplayName: owner.DisplayName, EmailAddress: owner.EmailAddress})
	}
	for _, p := range f.Permissions {
		info.Permissions = append(info.Permissions, toPermission(p))
	}
	return info
}

func toPermission(p *drive.Permission) Permission {
	return Permission{
		ID:           p.Id,
		Type:         p.Type,
		Role:         p.Role,
		EmailAddress: p.EmailAddress,
		Domain:       p.Domain,
		DisplayName:  p.DisplayName,
	}
}

// parseTime returns the zero time for empty or malformed RFC 3339 values.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

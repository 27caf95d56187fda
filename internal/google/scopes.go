package google

import (
	"slices"
	"sort"
	"sync"
)

// Base scopes requested for every user. The email scope identifies whose
// credentials a token is.
var BaseScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type serviceScopes struct {
	full     []string
	readOnly []string
}

var scopesByService = map[string]serviceScopes{
	"gmail": {
		full: []string{
			"https://www.googleapis.com/auth/gmail.modify",
			"https://www.googleapis.com/auth/gmail.send",
			"https://www.googleapis.com/auth/gmail.labels",
		},
		readOnly: []string{"https://www.googleapis.com/auth/gmail.readonly"},
	},
	"drive": {
		full:     []string{"https://www.googleapis.com/auth/drive"},
		readOnly: []string{"https://www.googleapis.com/auth/drive.readonly"},
	},
	"calendar": {
		full:     []string{"https://www.googleapis.com/auth/calendar"},
		readOnly: []string{"https://www.googleapis.com/auth/calendar.readonly"},
	},
	// Docs and Sheets search through the Drive API.
	"docs": {
		full: []string{
			"https://www.googleapis.com/auth/documents",
			"https://www.googleapis.com/auth/drive.readonly",
		},
		readOnly: []string{
			"https://www.googleapis.com/auth/documents.readonly",
			"https://www.googleapis.com/auth/drive.readonly",
		},
	},
	"sheets": {
		full: []string{
			"https://www.googleapis.com/auth/spreadsheets",
			"https://www.googleapis.com/auth/drive.readonly",
		},
		readOnly: []string{
			"https://www.googleapis.com/auth/spreadsheets.readonly",
			"https://www.googleapis.com/auth/drive.readonly",
		},
	},
	"chat": {
		full: []string{
			"https://www.googleapis.com/auth/chat.messages",
			"https://www.googleapis.com/auth/chat.spaces.readonly",
		},
		readOnly: []string{
			"https://www.googleapis.com/auth/chat.messages.readonly",
			"https://www.googleapis.com/auth/chat.spaces.readonly",
		},
	},
	"forms": {
		full: []string{
			"https://www.googleapis.com/auth/forms.body",
			"https://www.googleapis.com/auth/forms.responses.readonly",
		},
		readOnly: []string{
			"https://www.googleapis.com/auth/forms.body.readonly",
			"https://www.googleapis.com/auth/forms.responses.readonly",
		},
	},
	"slides": {
		full:     []string{"https://www.googleapis.com/auth/presentations"},
		readOnly: []string{"https://www.googleapis.com/auth/presentations.readonly"},
	},
	"tasks": {
		full:     []string{"https://www.googleapis.com/auth/tasks"},
		readOnly: []string{"https://www.googleapis.com/auth/tasks.readonly"},
	},
	"search": {
		full:     []string{"https://www.googleapis.com/auth/cse"},
		readOnly: []string{"https://www.googleapis.com/auth/cse"},
	},
}

var (
	enabledMu       sync.RWMutex
	enabledServices []string
)

// SetEnabledServices records the services whose scopes the OAuth proxy requests.
func SetEnabledServices(services []string) {
	enabledMu.Lock()
	defer enabledMu.Unlock()
	enabledServices = slices.Clone(services)
}

// EnabledServices returns the services recorded by SetEnabledServices.
func EnabledServices() []string {
	enabledMu.RLock()
	defer enabledMu.RUnlock()
	return slices.Clone(enabledServices)
}

// EnabledScopes returns the scopes for the enabled services.
func EnabledScopes(readOnly bool) []string {
	return ScopesForServices(EnabledServices(), readOnly)
}

// ScopesForServices returns the base scopes plus the scopes of services,
// sorted and without duplicates. Unknown services contribute nothing.
func ScopesForServices(services []string, readOnly bool) []string {
	set := make(map[string]struct{}, len(BaseScopes))
	for _, s := range BaseScopes {
		set[s] = struct{}{}
	}
	for _, service := range services {
		ss, ok := scopesByService[service]
		if !ok {
			continue
		}
		scopes := ss.full
		if readOnly {
			scopes = ss.readOnly
		}
		for _, s := range scopes {
			set[s] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// HasScopes reports whether granted covers every scope in required.
func HasScopes(granted, required []string) bool {
	for _, r := range required {
		if !slices.Contains(granted, r) {
			return false
		}
	}
	return true
}

package instrumentation

import "strings"

// ExtractUserDomain returns the domain of an email address for use as a
// low-cardinality label, or "unknown".
func ExtractUserDomain(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "unknown"
	}
	return strings.ToLower(domain)
}

// Operation types for Google API metrics.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationSend   = "send"
	OperationSearch = "search"
)

// Session store operations.
const (
	StoreOpLoad   = "load"
	StoreOpSave   = "save"
	StoreOpDelete = "delete"
	StoreOpBind   = "bind"
)

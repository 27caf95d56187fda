// Package docs_tools provides MCP tools for Google Docs.
//
// search_docs and get_doc_content are read-only. create_doc and
// modify_doc_text are registered unless the server runs read-only.
package docs_tools

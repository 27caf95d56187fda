// Package tasks wraps the Google Tasks API. An empty task list ID always
// refers to the user's default list.
package tasks

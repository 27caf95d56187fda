// Package chat wraps the Google Chat API for spaces and messages.
//
// Space and message names are resource names such as "spaces/AAAA" and
// "spaces/AAAA/messages/BBBB". Bare space ids are accepted and prefixed.
package chat

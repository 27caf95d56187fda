// Package forms wraps the Google Forms API: creating forms, reading their
// questions and listing responses.
package forms

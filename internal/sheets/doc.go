// Package sheets wraps the Google Sheets API together with the Drive API,
// which is used to find spreadsheets.
package sheets

// Package report writes comparison rows as a spreadsheet-friendly CSV file:
// UTF-8 with a byte order mark, CRLF line endings, and a fixed column order.
package report

// Package catalog reads book metadata out of the catalog store files.
//
// Each store file is an independent SQLite database owned by the reading
// app. The reader opens files one at a time in read-only mode and returns
// raw asset rows; a file that cannot be opened or queried fails on its own
// without affecting the others. Rows without an asset id are skipped, and
// rows without a title get one derived from the book file name.
package catalog

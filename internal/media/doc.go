// Package media classifies raw files by extension and derives the name of the
// web-friendly artifact each one produces.
//
// Classification is purely extension based (case-insensitive); no content
// sniffing or format validation happens here.
package media

// Package loaders provides format loaders that extract text sections from
// files on disk. Each loader handles a fixed set of file extensions.
//
// Loaders are registered with the Registry at startup; the ingestion
// pipeline selects one by the extension of the uploaded filename.
package loaders

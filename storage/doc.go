// Package storage stages uploaded audio for the producers and optionally
// archives the originals.
//
// Producers read audio from a local path, so every upload is first written
// to the staging directory under a random name and removed once the request
// finishes. When archiving is enabled the original is also copied to an
// object store (local directory or S3) keyed by date and upload id.
//
// Archive backends register themselves with RegisterFactory; import
// storage/local or storage/s3 for their side effects.
package storage

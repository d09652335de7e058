// Package store abstracts where snapshots live. The Memory and Local
// backends cover tests and single-host deployments; the S3 and MinIO
// backends in the subpackages cover object storage.
package store

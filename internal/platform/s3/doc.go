// Package s3 adapts the pipeline's object store interface to an S3
// (or S3-compatible) bucket using the AWS SDK v2.
package s3

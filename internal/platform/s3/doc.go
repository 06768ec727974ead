// Package s3 checks and prepares the S3-compatible bucket that receives
// off-site backups. It works against AWS, Wasabi, Backblaze B2,
// DigitalOcean Spaces and any other endpoint speaking the S3 API.
package s3

// Package services holds the error taxonomy shared by all pipelines plus the
// process executor seam used by the external tool clients in its
// subpackages. Each collaborator (gallery-dl, wget, exiftool, kakasi) gets a
// narrow client that can be exercised in tests with a fake executor.
package services

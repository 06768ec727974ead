package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errDomainInvalid    = errors.New("invalid domain (expected hr.example.com)")
	errEmailInvalid     = errors.New("invalid email address")
	errRequired         = errors.New("a value is required")
	errPathNotAbsolute  = errors.New("path must be absolute")
	errBucketInvalid    = errors.New("bucket names are 3-63 lowercase letters, digits, dots or hyphens")
	errEndpointInvalid  = errors.New("endpoint must be a host name or URL")
	errPortInvalid      = errors.New("port must be between 1 and 65535")
	errIdentifierSpaces = errors.New("must not contain spaces, ':', '@' or '/'")
)

package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/horilla-opensource/horilla-installer/internal/config"
)

func TestValidators(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		fn    func(string) error
		input string
		want  error
	}{
		{"empty domain derives", validateDomain, "", nil},
		{"domain", validateDomain, "hr.example.com", nil},
		{"domain upper case", validateDomain, "HR.Example.com", nil},
		{"single label domain", validateDomain, "localhost", errDomainInvalid},
		{"domain with scheme", validateDomain, "https://hr.example.com", errDomainInvalid},
		{"empty email defaults", validateEmail, "", nil},
		{"email", validateEmail, "ops@example.com", nil},
		{"bad email", validateEmail, "ops.example.com", errEmailInvalid},
		{"relative path", validateOptionalPath, "horilla", errPathNotAbsolute},
		{"absolute path", validateOptionalPath, "/srv/horilla", nil},
		{"port", validatePort, "8000", nil},
		{"port zero", validatePort, "0", errPortInvalid},
		{"port text", validatePort, "http", errPortInvalid},
		{"identifier", validateIdentifier, "horilla", nil},
		{"identifier with at", validateIdentifier, "user@db", errIdentifierSpaces},
		{"required blank", validateRequired, "  ", errRequired},
		{"bucket", validateBucket, "horilla-backups", nil},
		{"bucket upper case", validateBucket, "Horilla", errBucketInvalid},
		{"bucket too short", validateBucket, "hb", errBucketInvalid},
		{"endpoint host", validateEndpoint, "minio.example.com:9000", nil},
		{"endpoint url", validateEndpoint, "https://minio.example.com", nil},
		{"endpoint empty", validateEndpoint, "", errRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.fn(tt.input))
		})
	}
}

func TestPortField(t *testing.T) {
	t.Parallel()
	port := 0
	f := newPortField(&port)
	assert.Empty(t, f.text)

	f.text = " 8100 "
	f.apply()
	assert.Equal(t, 8100, port)

	f.text = "not a port"
	f.apply()
	assert.Equal(t, 8100, port, "invalid text leaves the value alone")

	prefilled := 9000
	assert.Equal(t, "9000", newPortField(&prefilled).text)
}

func TestProvidersToOptions(t *testing.T) {
	t.Parallel()
	opts := ProvidersToOptions()
	assert.Len(t, opts, len(config.Providers))
	for i, p := range config.Providers {
		assert.Equal(t, p, opts[i].Value)
	}
	assert.Contains(t, regionDescription(config.ProviderWasabi), "eu-central-1")
	assert.Equal(t, "provider region", regionDescription("ftp"))
}

func TestYesNo(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))

	in := config.Input{EnableBackups: yesNo(true)}
	assert.True(t, in.BackupsRequested())
}

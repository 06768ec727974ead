package config

import (
	"fmt"
	"regexp"
	"strings"
)

var regionPattern = regexp.MustCompile(`^[a-z]{2}-[a-z]+-[0-9]+$`)

// regionAliases maps shorthand operators commonly type to AWS region codes.
var regionAliases = map[string]string{
	"US1":        "us-east-1",
	"US2":        "us-east-2",
	"USW1":       "us-west-1",
	"USW2":       "us-west-2",
	"EU":         "eu-west-1",
	"EU1":        "eu-west-1",
	"EU2":        "eu-central-1",
	"AP":         "ap-southeast-1",
	"AP1":        "ap-southeast-1",
	"TOKYO":      "ap-northeast-1",
	"JAPAN":      "ap-northeast-1",
	"FRANKFURT":  "eu-central-1",
	"IRELAND":    "eu-west-1",
	"OREGON":     "us-west-2",
	"VIRGINIA":   "us-east-1",
	"OHIO":       "us-east-2",
	"CALIFORNIA": "us-west-1",
	"SINGAPORE":  "ap-southeast-1",
	"MUMBAI":     "ap-south-1",
	"INDIA":      "ap-south-1",
}

// NormalizeRegion turns operator input into a region code.
//
// Well-formed codes pass through lower-cased, known aliases are translated,
// and anything else falls back to DefaultRegion. The second return value is
// false when the input was replaced.
func NormalizeRegion(region string) (string, bool) {
	trimmed := strings.TrimSpace(region)
	if trimmed == "" {
		return DefaultRegion, true
	}
	lower := strings.ToLower(trimmed)
	if regionPattern.MatchString(lower) {
		return lower, true
	}
	if alias, ok := regionAliases[strings.ToUpper(trimmed)]; ok {
		return alias, false
	}
	return DefaultRegion, false
}

// S3Endpoint returns the S3 API endpoint for a backup provider, or "" when
// the SDK default (AWS) applies.
func S3Endpoint(b *BackupConfig) string {
	switch b.Provider {
	case ProviderWasabi:
		return fmt.Sprintf("https://s3.%s.wasabisys.com", b.Region)
	case ProviderDigitalOcean:
		return fmt.Sprintf("https://%s.digitaloceanspaces.com", b.Region)
	case ProviderB2:
		return fmt.Sprintf("https://s3.%s.backblazeb2.com", b.Region)
	case ProviderOther:
		return b.Endpoint
	default:
		return ""
	}
}

// RcloneProvider returns the rclone backend type and s3 provider name.
// The provider name is empty for non-s3 backends.
func RcloneProvider(provider string) (backend, s3Provider string) {
	switch provider {
	case ProviderAWS:
		return "s3", "AWS"
	case ProviderWasabi:
		return "s3", "Wasabi"
	case ProviderDigitalOcean:
		return "s3", "DigitalOcean"
	case ProviderB2:
		return "b2", ""
	default:
		return "s3", "Other"
	}
}

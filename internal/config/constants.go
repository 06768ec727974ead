package config

import "time"

// Defaults applied when neither a flag nor a saved answer supplies a value.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "Admin@123"
	DefaultEmail         = "admin@example.com"
	DefaultDBUser        = "horilla"
	DefaultDBName        = "horilla"
	DefaultRegion        = "us-east-1"
	DefaultFrequency     = FrequencyDaily
	DefaultDBImage       = "postgres:16-alpine"
	DefaultAppPort       = 8000
	DefaultInstallDir    = "horilla" // relative to the operator's home
	DefaultTimeout       = 600 * time.Second
	DefaultMaxRetries    = 5
	DefaultRetryDelay    = 10 * time.Second

	// WildcardDNSSuffix resolves <anything>.<a.b.c.d>.nip.io to a.b.c.d.
	// Certificates are never requested for such names.
	WildcardDNSSuffix = ".nip.io"

	// SourceRepository is cloned when no prebuilt application image is given.
	SourceRepository = "https://github.com/horilla-opensource/horilla.git"
)

// Backup providers.
const (
	ProviderAWS          = "aws"
	ProviderWasabi       = "wasabi"
	ProviderB2           = "b2"
	ProviderDigitalOcean = "digitalocean"
	ProviderOther        = "other"
)

// Backup frequencies.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Providers lists the supported backup providers in display order.
var Providers = []string{ProviderAWS, ProviderWasabi, ProviderB2, ProviderDigitalOcean, ProviderOther}

// Frequencies lists the supported backup frequencies in display order.
var Frequencies = []string{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}

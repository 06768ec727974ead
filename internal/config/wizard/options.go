package wizard

import (
	"github.com/charmbracelet/huh"

	"github.com/horilla-opensource/horilla-installer/internal/config"
)

// ProviderOption describes a backup storage provider.
type ProviderOption struct {
	Value       string
	Label       string
	Description string
}

// Providers lists the supported backup providers in display order.
var Providers = []ProviderOption{
	{Value: config.ProviderAWS, Label: "Amazon S3", Description: "AWS region code, e.g. us-east-1"},
	{Value: config.ProviderWasabi, Label: "Wasabi", Description: "Wasabi region, e.g. eu-central-1"},
	{Value: config.ProviderB2, Label: "Backblaze B2", Description: "B2 region, e.g. us-west-004"},
	{Value: config.ProviderDigitalOcean, Label: "DigitalOcean Spaces", Description: "Spaces region, e.g. fra1"},
	{Value: config.ProviderOther, Label: "Other S3-compatible", Description: "any endpoint, e.g. MinIO"},
}

// FrequencyOptions are the backup schedules offered.
var FrequencyOptions = []huh.Option[string]{
	huh.NewOption("Daily at 02:00", config.FrequencyDaily),
	huh.NewOption("Weekly, Sunday 02:00", config.FrequencyWeekly),
	huh.NewOption("Monthly, 1st at 02:00", config.FrequencyMonthly),
}

// ProvidersToOptions converts Providers to huh options.
func ProvidersToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Providers))
	for i, p := range Providers {
		opts[i] = huh.NewOption(p.Label+" ("+p.Description+")", p.Value)
	}
	return opts
}

// regionDescription returns the region hint for provider.
func regionDescription(provider string) string {
	for _, p := range Providers {
		if p.Value == provider {
			return p.Description
		}
	}
	return "provider region"
}

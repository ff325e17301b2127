package flag

import (
	"flag"

	"github.com/elC0mpa/gpu-doctor/model"
)

type service struct{}

func NewService() *service {
	return &service{}
}

func (s *service) GetParsedFlags() (model.Flags, error) {
	providers := flag.String("providers", "", "Comma-separated providers to scan (default: all configured)")
	jsonOutput := flag.Bool("json", false, "Emit JSON instead of tables")
	waste := flag.Bool("waste", false, "Display GPU waste report")
	recommend := flag.Bool("recommend", false, "Display optimization recommendations")
	forecast := flag.Bool("forecast", false, "Display spend forecast for the next 30 days")
	region := flag.String("region", "us-east-1", "AWS region")
	profile := flag.String("profile", "", "AWS profile configuration")
	project := flag.String("project", "", "GCP project ID")
	billingAccount := flag.String("billing-account", "", "GCP billing account with export enabled")
	subscription := flag.String("subscription", "", "Azure subscription ID")

	flag.Parse()

	return model.Flags{
		Providers:      *providers,
		JSON:           *jsonOutput,
		Waste:          *waste,
		Recommend:      *recommend,
		Forecast:       *forecast,
		Region:         *region,
		Profile:        *profile,
		Project:        *project,
		BillingAccount: *billingAccount,
		Subscription:   *subscription,
	}, nil
}

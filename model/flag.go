package model

type Flags struct {
	// Common flags
	Providers string
	JSON      bool

	// Workflow selection
	Waste     bool
	Recommend bool
	Forecast  bool

	// AWS-specific flags
	Region  string
	Profile string

	// GCP-specific flags
	Project        string
	BillingAccount string

	// Azure-specific flags
	Subscription string
}

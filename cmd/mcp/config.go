package main

import "os"

// Config holds environment-based configuration for all providers
type Config struct {
	// AWS configuration
	AWSRegion  string
	AWSProfile string

	// GCP configuration
	GCPProjectID      string
	GCPBillingAccount string

	// Azure configuration
	AzureSubscriptionID string

	// Marketplace API keys
	RunPodAPIKey string
	LambdaAPIKey string
	VastAPIKey   string
}

// LoadProviderConfig reads provider configuration from environment variables
func LoadProviderConfig() *Config {
	return &Config{
		AWSRegion:           getEnvOrDefault("AWS_REGION", "us-east-1"),
		AWSProfile:          os.Getenv("AWS_PROFILE"),
		GCPProjectID:        os.Getenv("GCP_PROJECT_ID"),
		GCPBillingAccount:   os.Getenv("GCP_BILLING_ACCOUNT"),
		AzureSubscriptionID: os.Getenv("AZURE_SUBSCRIPTION_ID"),
		RunPodAPIKey:        os.Getenv("RUNPOD_API_KEY"),
		LambdaAPIKey:        os.Getenv("LAMBDA_API_KEY"),
		VastAPIKey:          os.Getenv("VASTAI_API_KEY"),
	}
}

// HasAWS returns true if AWS is available (always true - uses default credential chain)
func (c *Config) HasAWS() bool {
	return true
}

// HasGCP returns true if GCP project is configured
func (c *Config) HasGCP() bool {
	return c.GCPProjectID != ""
}

// HasAzure returns true if Azure subscription is configured
func (c *Config) HasAzure() bool {
	return c.AzureSubscriptionID != ""
}

// HasRunPod returns true if a RunPod API key is configured
func (c *Config) HasRunPod() bool {
	return c.RunPodAPIKey != ""
}

// HasLambda returns true if a Lambda API key is configured
func (c *Config) HasLambda() bool {
	return c.LambdaAPIKey != ""
}

// HasVast returns true if a Vast API key is configured
func (c *Config) HasVast() bool {
	return c.VastAPIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/elC0mpa/gpu-doctor/model"
)

type service struct {
	region    string
	ec2Client *ec2.Client
	ceClient  *costexplorer.Client
	stsClient *sts.Client
}

type ConnectorService interface {
	ProviderName() string
	ListInstances(ctx context.Context) ([]model.ProviderInstance, error)
	ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error)
	AccountID(ctx context.Context) (string, error)
}

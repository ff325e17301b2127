package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/pricing"
)

func NewService(ctx context.Context, region, profile string) (*service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region), config.WithSharedConfigProfile(profile))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s := &service{
		region:    region,
		ec2Client: ec2.NewFromConfig(cfg),
		ceClient:  costexplorer.NewFromConfig(cfg),
		stsClient: sts.NewFromConfig(cfg),
	}

	if _, err := s.AccountID(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify AWS credentials: %w", err)
	}

	return s, nil
}

func (s *service) ProviderName() string {
	return "aws"
}

// AccountID resolves the caller's account through STS
func (s *service) AccountID(ctx context.Context) (string, error) {
	output, err := s.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}
	return awssdk.ToString(output.Account), nil
}

// ListInstances returns every EC2 instance whose machine shape carries
// GPUs, in any lifecycle state. EC2 reports no utilization metric, so
// the records carry none.
func (s *service) ListInstances(ctx context.Context) ([]model.ProviderInstance, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   awssdk.String("instance-type"),
				Values: pricing.InstanceTypesFor("aws"),
			},
		},
	}

	var out []model.ProviderInstance
	paginator := ec2.NewDescribeInstancesPaginator(s.ec2Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				out = append(out, s.toProviderInstance(instance))
			}
		}
	}

	return out, nil
}

func (s *service) toProviderInstance(instance ec2types.Instance) model.ProviderInstance {
	state := ""
	if instance.State != nil {
		state = string(instance.State.Name)
	}

	pricingLabel := ""
	if instance.InstanceLifecycle == ec2types.InstanceLifecycleTypeSpot {
		pricingLabel = "spot"
	}

	region := s.region
	if instance.Placement != nil && instance.Placement.AvailabilityZone != nil {
		az := awssdk.ToString(instance.Placement.AvailabilityZone)
		if len(az) > 1 {
			region = az[:len(az)-1]
		}
	}

	return model.ProviderInstance{
		ID:           awssdk.ToString(instance.InstanceId),
		Provider:     "aws",
		InstanceType: string(instance.InstanceType),
		State:        state,
		Region:       region,
		PricingLabel: pricingLabel,
		LaunchTime:   awssdk.ToTime(instance.LaunchTime),
	}
}

// ListSpend queries Cost Explorer for daily GPU instance costs over the
// period. Cost Explorer groups by machine shape and region rather than
// by instance, so record IDs are "<type>/<region>" keys.
func (s *service) ListSpend(ctx context.Context, period model.Period) ([]model.ProviderCostRecord, error) {
	input := &costexplorer.GetCostAndUsageInput{
		Granularity: cetypes.GranularityDaily,
		TimePeriod: &cetypes.DateInterval{
			Start: awssdk.String(period.Start.Format("2006-01-02")),
			End:   awssdk.String(period.End.Format("2006-01-02")),
		},
		Metrics: []string{"UnblendedCost", "UsageQuantity"},
		GroupBy: []cetypes.GroupDefinition{
			{Key: awssdk.String("INSTANCE_TYPE"), Type: cetypes.GroupDefinitionTypeDimension},
			{Key: awssdk.String("REGION"), Type: cetypes.GroupDefinitionTypeDimension},
		},
		Filter: &cetypes.Expression{
			Dimensions: &cetypes.DimensionValues{
				Key:    cetypes.DimensionInstanceType,
				Values: pricing.InstanceTypesFor("aws"),
			},
		},
	}

	output, err := s.ceClient.GetCostAndUsage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get cost and usage: %w", err)
	}

	var records []model.ProviderCostRecord
	for _, result := range output.ResultsByTime {
		start, err := time.Parse("2006-01-02", awssdk.ToString(result.TimePeriod.Start))
		if err != nil {
			continue
		}
		end, err := time.Parse("2006-01-02", awssdk.ToString(result.TimePeriod.End))
		if err != nil {
			continue
		}

		for _, group := range result.Groups {
			if len(group.Keys) < 2 {
				continue
			}
			instanceType, region := group.Keys[0], group.Keys[1]

			cost := parseMetric(group.Metrics, "UnblendedCost")
			hours := parseMetric(group.Metrics, "UsageQuantity")

			gpuHours := hours
			if _, count, ok := pricing.InstanceTypeGPU("aws", instanceType); ok {
				gpuHours = hours * float64(count)
			}

			records = append(records, model.ProviderCostRecord{
				InstanceID:  instanceType + "/" + region,
				Provider:    "aws",
				PeriodStart: start,
				PeriodEnd:   end,
				Cost:        cost,
				GPUHours:    gpuHours,
			})
		}
	}

	return records, nil
}

func parseMetric(metrics map[string]cetypes.MetricValue, name string) float64 {
	value, err := strconv.ParseFloat(awssdk.ToString(metrics[name].Amount), 64)
	if err != nil {
		return 0
	}
	return value
}

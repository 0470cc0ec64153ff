package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/convai-webhook/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an AWS Lambda function behind API Gateway or a function URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.Global.Mode = config.ModeLambda
			logger = logger.With("mode", config.ModeLambda)
			return runLambda(cmd)
		},
	}
}

func runLambda(cmd *cobra.Command) error {
	rt, err := setup(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.Info("lambda starting...", "payloadType", config.Lambda.PayloadType)
	lambda.StartWithOptions(rt.Lambda,
		lambda.WithContext(cmd.Context()))
	return nil
}

package cmd

import (
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
)

var lambdaEnvMapString = map[*string]boundEnvVar[string]{
	&config.Lambda.SSMParameter: {
		Name:        "lambda-config-ssm-parameter",
		Description: "An SSM parameter holding a YAML configuration document. When set, it replaces the flag and environment configuration",
	},
}

package cmd

import (
	"time"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'lambda' and 'service'",
		Short:       helpers.Ptr("m"),
	},
	&config.Filter.TargetFormat: {
		Name:        "filter-target-format",
		Description: "The format offered to clients that negotiate for it",
		Short:       helpers.Ptr("f"),
	},
	&config.Filter.StatusGate: {
		Name:        "filter-status-gate",
		Description: "Upstream statuses passed through untouched. Supported values are 'error' (>= 400) and 'strict' (anything but 200)",
	},
	&config.Origin.Mode: {
		Name:        "origin-mode",
		Description: "How the location of originals is resolved. Supported values are 'dynamic', 'bucket' and 'url'",
		Short:       helpers.Ptr("o"),
	},
	&config.Origin.Bucket: {
		Name:        "origin-bucket",
		Description: "The bucket holding originals when the origin mode is 'bucket'",
		Env:         helpers.Ptr("S3_BUCKET_NAME"),
	},
	&config.Origin.BaseURL: {
		Name:        "origin-base-url",
		Description: "The base URL of originals when the origin mode is 'url'",
	},
	&config.Storage.Backend: {
		Name:        "storage-backend",
		Description: "The object storage client. Supported values are 's3' and 'minio'",
	},
	&config.Storage.Minio.Endpoint: {
		Name:        "storage-minio-endpoint",
		Description: "The S3-compatible endpoint used by the minio backend",
	},
	&config.Storage.Minio.AccessKey: {
		Name:        "storage-minio-access-key",
		Description: "The access key used by the minio backend. If not specified, AWS environment credentials are used",
	},
	&config.Storage.Minio.SecretKey: {
		Name:        "storage-minio-secret-key",
		Description: "The secret key used by the minio backend",
		Hidden:      true,
	},
	&config.Telemetry.Exporter: {
		Name:        "telemetry-exporter",
		Description: "The trace exporter. Supported values are 'none', 'stdout' and 'otlp'",
	},
	&config.Telemetry.OTLPEndpoint: {
		Name:        "telemetry-otlp-endpoint",
		Description: "The OTLP/HTTP collector endpoint",
		Env:         helpers.Ptr("OTEL_EXPORTER_OTLP_ENDPOINT"),
	},
	&config.Telemetry.ServiceName: {
		Name:        "telemetry-service-name",
		Description: "The service name reported with traces",
		Env:         helpers.Ptr("OTEL_SERVICE_NAME"),
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Filter.DisableDebugHeader: {
		Name:        "filter-disable-debug-header",
		Description: "Do not annotate responses with the X-Debug-Reason header",
	},
	&config.Filter.DisableVary: {
		Name:        "filter-disable-vary",
		Description: "Do not add Vary: Accept to transcoded responses",
	},
	&config.Storage.Minio.UseSSL: {
		Name:        "storage-minio-use-ssl",
		Description: "Use TLS when talking to the minio endpoint",
	},
	&config.Telemetry.OTLPInsecure: {
		Name:        "telemetry-otlp-insecure",
		Description: "Disable TLS towards the OTLP collector",
	},
}

var envMapInt = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
		Count:       true,
	},
	&config.Filter.Quality: {
		Name:        "filter-quality",
		Description: "The lossy encoder quality of the target format, within [1, 100]",
		Short:       helpers.Ptr("q"),
	},
	&config.Filter.SizeCeiling: {
		Name:        "filter-size-ceiling",
		Description: "The maximum length, in base64 characters, of a transcoded body",
	},
	&config.Filter.MaxPixels: {
		Name:        "filter-max-pixels",
		Description: "The maximum number of source pixels (width*height) accepted for decoding",
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Storage.HTTPTimeout: {
		Name:        "storage-http-timeout",
		Description: "The timeout of a single fetch when the origin mode is 'url'",
	},
}

var envMapStringSlice = map[*[]string]boundEnvVar[[]string]{
	&config.Origin.DistributionDomains: {
		Name:        "origin-distribution-domains",
		Description: "Edge distribution hosts that must never be fetched from",
	},
}

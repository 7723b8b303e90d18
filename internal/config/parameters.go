// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

const (
	// ModeLambda runs the filter inside the AWS Lambda runtime.
	ModeLambda = "lambda"
	// ModeService runs the filter as a local HTTP service that accepts CloudFront events.
	ModeService = "service"
)

const (
	// StatusGateError passes through every response with status >= 400.
	StatusGateError = "error"
	// StatusGateStrict passes through every response whose status is not 200.
	StatusGateStrict = "strict"
)

const (
	// OriginModeDynamic derives the bucket from the S3 origin domain of each request.
	OriginModeDynamic = "dynamic"
	// OriginModeBucket always fetches from the configured bucket.
	OriginModeBucket = "bucket"
	// OriginModeURL always fetches from the configured base URL.
	OriginModeURL = "url"
)

const (
	// StorageBackendS3 fetches objects with the AWS SDK.
	StorageBackendS3 = "s3"
	// StorageBackendMinio fetches objects from an S3-compatible endpoint.
	StorageBackendMinio = "minio"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Filter is a struct that contains the negotiation and transcoding policy.
	Filter filter
	// Origin is a struct that contains the origin resolution configuration.
	Origin origin
	// Storage is a struct that contains the storage backend configuration.
	Storage storage
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
	// Telemetry is a struct that contains the tracing configuration.
	Telemetry telemetry
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"lambda"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type filter struct {
	// TargetFormat is the single format offered to negotiating clients.
	TargetFormat string `yaml:"targetFormat,omitempty" default:"webp"`
	// Quality is the lossy encoder quality used for the target format.
	Quality int `yaml:"quality,omitempty" default:"80"`
	// SizeCeiling is the maximum length of the base64 encoded body, in characters.
	SizeCeiling int `yaml:"sizeCeiling,omitempty" default:"1300000"`
	// MaxPixels bounds the source dimensions (width*height) accepted for decoding.
	MaxPixels int `yaml:"maxPixels,omitempty" default:"40000000"`
	// StatusGate selects which upstream statuses are passed through untouched.
	StatusGate string `yaml:"statusGate,omitempty" default:"error"`
	// DisableDebugHeader suppresses the X-Debug-Reason header otherwise set on every response.
	DisableDebugHeader bool `yaml:"disableDebugHeader,omitempty"`
	// DisableVary suppresses the Vary: Accept header otherwise set on transcoded responses.
	DisableVary bool `yaml:"disableVary,omitempty"`
}

type origin struct {
	// Mode is one of dynamic, bucket or url.
	Mode string `yaml:"mode,omitempty" default:"dynamic"`
	// Bucket is the static bucket used by the bucket mode.
	Bucket string `yaml:"bucket,omitempty"`
	// BaseURL is the static location used by the url mode.
	BaseURL string `yaml:"baseURL,omitempty"`
	// DistributionDomains lists edge distribution hosts that must never be used as a fetch target.
	DistributionDomains []string `yaml:"distributionDomains,omitempty"`
}

type storage struct {
	// Backend is one of s3 or minio.
	Backend string `yaml:"backend,omitempty" default:"s3"`
	// Minio is the S3-compatible endpoint configuration used by the minio backend.
	Minio struct {
		Endpoint  string `yaml:"endpoint,omitempty" default:"localhost:9000"`
		AccessKey string `yaml:"accessKey,omitempty"`
		SecretKey string `yaml:"secretKey,omitempty"`
		UseSSL    bool   `yaml:"useSSL,omitempty"`
	} `yaml:"minio,omitempty"`
	// HTTPTimeout bounds a single fetch of the url origin mode.
	HTTPTimeout time.Duration `yaml:"httpTimeout,omitempty" default:"10s"`
}

type service struct {
	Path    string        `yaml:"path,omitempty" default:"/"`
	Addr    string        `yaml:"addr,omitempty"`
	Port    string        `yaml:"port,omitempty" default:"8080"`
	Timeout time.Duration `yaml:"timeout,omitempty" default:"5s"`
}

type lambda struct {
	// SSMParameter is the name of an SSM parameter holding a YAML configuration document.
	SSMParameter string `yaml:"ssmParameter,omitempty"`
}

type telemetry struct {
	// Exporter is one of none, stdout or otlp.
	Exporter     string `yaml:"exporter,omitempty" default:"none"`
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty"`
	OTLPInsecure bool   `yaml:"otlpInsecure,omitempty"`
	ServiceName  string `yaml:"serviceName,omitempty" default:"aws-image-optimizer"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Filter),
		defaults.Set(&Origin),
		defaults.Set(&Storage),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
		defaults.Set(&Telemetry),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	if err = Load(content); err != nil {
		return fmt.Errorf("configuration file %s: %w", path, err)
	}
	return nil
}

// Load replaces the configuration with the YAML document in content.
// Fields absent from the document are reset and filled by SetDefaults.
func Load(content []byte) error {
	type all struct {
		Global    global    `yaml:"global,omitempty"`
		Filter    filter    `yaml:"filter,omitempty"`
		Origin    origin    `yaml:"origin,omitempty"`
		Storage   storage   `yaml:"storage,omitempty"`
		Service   service   `yaml:"service,omitempty"`
		Lambda    lambda    `yaml:"lambda,omitempty"`
		Telemetry telemetry `yaml:"telemetry,omitempty"`
	}
	var a all
	if err := yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	Global = a.Global
	Filter = a.Filter
	Origin = a.Origin
	Storage = a.Storage
	Service = a.Service
	Lambda = a.Lambda
	Telemetry = a.Telemetry

	return SetDefaults()
}

// Validate checks the enumerated settings.
func Validate() error {
	var errs []error
	switch Filter.StatusGate {
	case StatusGateError, StatusGateStrict:
	default:
		errs = append(errs, fmt.Errorf("invalid status gate: %q", Filter.StatusGate))
	}
	if Filter.Quality < 1 || Filter.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality must be within [1, 100], got %d", Filter.Quality))
	}
	if Filter.SizeCeiling <= 0 {
		errs = append(errs, fmt.Errorf("size ceiling must be positive, got %d", Filter.SizeCeiling))
	}
	switch Origin.Mode {
	case OriginModeDynamic:
	case OriginModeBucket:
		if Origin.Bucket == "" {
			errs = append(errs, errors.New("origin mode bucket requires origin.bucket"))
		}
	case OriginModeURL:
		if Origin.BaseURL == "" {
			errs = append(errs, errors.New("origin mode url requires origin.baseURL"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid origin mode: %q", Origin.Mode))
	}
	switch Storage.Backend {
	case StorageBackendS3, StorageBackendMinio:
	default:
		errs = append(errs, fmt.Errorf("invalid storage backend: %q", Storage.Backend))
	}
	return errors.Join(errs...)
}

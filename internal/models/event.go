// Package models provides the core data structures for the CloudFront origin-response events handled by the filter.
package models

// Event represents a CloudFront (Lambda@Edge) origin-response event.
type Event struct {
	Records []Record `json:"Records"`
}

// Record wraps a single CloudFront exchange.
type Record struct {
	CF CloudFront `json:"cf"`
}

// CloudFront holds the request/response pair of an exchange.
type CloudFront struct {
	Config   Config   `json:"config"`
	Request  Request  `json:"request"`
	Response Response `json:"response"`
}

// Config describes the distribution the event was emitted by.
type Config struct {
	DistributionDomainName string `json:"distributionDomainName,omitempty"`
	DistributionID         string `json:"distributionId,omitempty"`
	EventType              string `json:"eventType,omitempty"`
	RequestID              string `json:"requestId,omitempty"`
}

// Request is the viewer request as forwarded to the origin.
type Request struct {
	ClientIP    string  `json:"clientIp,omitempty"`
	Method      string  `json:"method,omitempty"`
	URI         string  `json:"uri"`
	QueryString string  `json:"querystring,omitempty"`
	Headers     Headers `json:"headers"`
	Origin      *Origin `json:"origin,omitempty"`
}

// Origin identifies the backing location the object was fetched from. Exactly one of S3 or Custom is set.
type Origin struct {
	S3     *S3Origin     `json:"s3,omitempty"`
	Custom *CustomOrigin `json:"custom,omitempty"`
}

// S3Origin describes an S3 bucket origin.
type S3Origin struct {
	DomainName    string  `json:"domainName"`
	Path          string  `json:"path,omitempty"`
	Region        string  `json:"region,omitempty"`
	AuthMethod    string  `json:"authMethod,omitempty"`
	CustomHeaders Headers `json:"customHeaders,omitempty"`
}

// CustomOrigin describes a custom (HTTP) origin.
type CustomOrigin struct {
	DomainName    string   `json:"domainName"`
	Path          string   `json:"path,omitempty"`
	Port          int      `json:"port,omitempty"`
	Protocol      string   `json:"protocol,omitempty"`
	SSLProtocols  []string `json:"sslProtocols,omitempty"`
	CustomHeaders Headers  `json:"customHeaders,omitempty"`
}

// Body encodings supported by CloudFront for generated responses.
const (
	BodyEncodingText   = "text"
	BodyEncodingBase64 = "base64"
)

// Response is the origin response, and the value returned to CloudFront.
type Response struct {
	Status            string  `json:"status"`
	StatusDescription string  `json:"statusDescription,omitempty"`
	Headers           Headers `json:"headers"`
	Body              string  `json:"body,omitempty"`
	BodyEncoding      string  `json:"bodyEncoding,omitempty"`
}

// Clone returns a deep copy of the response.
func (r Response) Clone() Response {
	r.Headers = r.Headers.Clone()
	return r
}

// Exchange returns the single exchange carried by the event.
func (e Event) Exchange() (*CloudFront, bool) {
	if len(e.Records) == 0 {
		return nil, false
	}
	return &e.Records[0].CF, true
}

package models_test

import (
	"encoding/json"
	"testing"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const originResponseEvent = `{
  "Records": [
    {
      "cf": {
        "config": {"distributionDomainName": "d111111abcdef8.cloudfront.net", "eventType": "origin-response"},
        "request": {
          "uri": "/cat.jpg",
          "headers": {"accept": [{"key": "Accept", "value": "image/webp,*/*"}]},
          "origin": {"s3": {"domainName": "my-images.s3.amazonaws.com", "path": ""}}
        },
        "response": {
          "status": "200",
          "statusDescription": "OK",
          "headers": {"content-type": [{"key": "Content-Type", "value": "image/jpeg"}]}
        }
      }
    }
  ]
}`

func TestEventDecoding(t *testing.T) {
	var event models.Event
	require.NoError(t, json.Unmarshal([]byte(originResponseEvent), &event))

	exchange, ok := event.Exchange()
	require.True(t, ok)
	assert.Equal(t, "/cat.jpg", exchange.Request.URI)
	assert.Equal(t, []string{"image/webp,*/*"}, exchange.Request.Headers.Values("accept"))
	require.NotNil(t, exchange.Request.Origin)
	require.NotNil(t, exchange.Request.Origin.S3)
	assert.Equal(t, "my-images.s3.amazonaws.com", exchange.Request.Origin.S3.DomainName)
	assert.Equal(t, "200", exchange.Response.Status)
	assert.Equal(t, "d111111abcdef8.cloudfront.net", exchange.Config.DistributionDomainName)
}

func TestEventExchangeEmpty(t *testing.T) {
	_, ok := models.Event{}.Exchange()
	assert.False(t, ok)
}

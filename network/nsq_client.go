package network

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type NSQClient struct {
	URL        string
	httpClient *http.Client
}

// Returns a new NSQ client that will connect to the NSQ server
// and the specified url. The URL is typically available through
// Config.NsqdHttpAddress, and usually ends with :4151. This is
// the URL to which we post retrieval notices.
//
// Note that this client provides write access to the queue, so we
// can publish things. It does not provide read access. Whatever
// consumes the notices does the reading.
func NewNSQClient(nsqdUrl string) *NSQClient {
	return &NSQClient{
		URL:        strings.TrimRight(nsqdUrl, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Publish posts body to nsqd under the specified topic.
func (client *NSQClient) Publish(topic string, body []byte) error {
	pubUrl := fmt.Sprintf("%s/pub?topic=%s", client.URL, url.QueryEscape(topic))
	resp, err := client.httpClient.Post(pubUrl, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("Nsqd returned an error when publishing data: %v", err)
	}

	// nsqd sends a simple OK. We have to read the response body,
	// or the connection will hang open forever.
	respBody, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != 200 {
		bodyText := "[no response body]"
		if len(respBody) > 0 {
			bodyText = string(respBody)
		}
		return fmt.Errorf("nsqd returned status code %d when attempting to publish "+
			"to topic %s. Response body: %s", resp.StatusCode, topic, bodyText)
	}
	return nil
}

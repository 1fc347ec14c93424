package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client sends transactional mail through the EmailJS REST API. One send per
// call; recipients are addressed through template parameters.
type Client struct {
	baseURL    string
	serviceId  string
	templateId string
	publicKey  string
	privateKey string
	http       *http.Client
}

// TemplateParams is the variable set substituted into the mail template.
type TemplateParams map[string]string

func NewClient() (*Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("EMAILJS_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.emailjs.com"
	}
	serviceId := strings.TrimSpace(os.Getenv("EMAILJS_SERVICE_ID"))
	templateId := strings.TrimSpace(os.Getenv("EMAILJS_TEMPLATE_ID"))
	publicKey := strings.TrimSpace(os.Getenv("EMAILJS_PUBLIC_KEY"))
	if serviceId == "" || templateId == "" || publicKey == "" {
		return nil, errors.New("emailjs credentials are not configured")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceId:  serviceId,
		templateId: templateId,
		publicKey:  publicKey,
		privateKey: strings.TrimSpace(os.Getenv("EMAILJS_PRIVATE_KEY")),
		http:       &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type sendRequest struct {
	ServiceId      string         `json:"service_id"`
	TemplateId     string         `json:"template_id"`
	UserId         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

// Send posts one templated mail. The recipient address travels inside the
// template parameters under "to_email".
func (c *Client) Send(ctx context.Context, params TemplateParams) error {

	payload, err := json.Marshal(sendRequest{
		ServiceId:      c.serviceId,
		TemplateId:     c.templateId,
		UserId:         c.publicKey,
		AccessToken:    c.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/api/v1.0/email/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("emailjs api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

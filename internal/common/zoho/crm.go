package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	commonhttp "acadezone-chatbot/internal/common/http"
)

type CRMClient struct {
	apiKey     string
	oauthToken string
	baseURL    string
	httpClient *commonhttp.Client
}

// Lead is the CRM representation of a chatbot contact.
type Lead struct {
	ID         string `json:"id,omitempty"`
	Email      string `json:"Email"`
	FirstName  string `json:"First_Name"`
	LastName   string `json:"Last_Name"`
	Phone      string `json:"Phone,omitempty"`
	Source     string `json:"Lead_Source,omitempty"`
	Department string `json:"Department,omitempty"`
}

type CreateLeadResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

func NewCRMClient(apiKey, oauthToken string) *CRMClient {
	return &CRMClient{
		apiKey:     apiKey,
		oauthToken: oauthToken,
		baseURL:    "https://www.zohoapis.com/crm/v3",
		httpClient: commonhttp.NewClient(30 * time.Second),
	}
}

// NewCRMClientWithBaseURL points the client at a custom endpoint, used in tests.
func NewCRMClientWithBaseURL(apiKey, oauthToken, baseURL string) *CRMClient {
	c := NewCRMClient(apiKey, oauthToken)
	c.baseURL = baseURL
	return c
}

// CreateLead pushes a lead record to the CRM and returns its CRM id.
func (c *CRMClient) CreateLead(ctx context.Context, lead *Lead) (string, error) {
	url := fmt.Sprintf("%s/Leads", c.baseURL)

	payload := map[string]interface{}{
		"data": []Lead{*lead},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Zoho-oauthtoken "+c.oauthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("CRM returned status %d: %s", resp.StatusCode, string(body))
	}

	var createResp CreateLeadResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(createResp.Data) == 0 {
		return "", fmt.Errorf("CRM returned empty data")
	}
	if createResp.Data[0].Status != "success" {
		return "", fmt.Errorf("CRM rejected lead: %s", createResp.Data[0].Message)
	}

	return createResp.Data[0].Details.ID, nil
}

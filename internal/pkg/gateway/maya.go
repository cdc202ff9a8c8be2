package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/qs3c/gym_go_server/config"
)

// 网关侧支付状态
const (
	StatusPaid    = "PAYMENT_SUCCESS"
	StatusFailed  = "PAYMENT_FAILED"
	StatusPending = "PAYMENT_PENDING"
)

// Client 在线支付网关客户端。
// 网关协议对本系统是黑盒，只依赖 checkout / verify 两个接口。
type Client struct {
	cfg        *config.GatewayConfig
	httpClient *http.Client
}

func NewClient(cfg *config.GatewayConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	Reference   string `json:"reference"`
}

type checkoutRequest struct {
	Reference   string  `json:"requestReferenceNumber"`
	Amount      float64 `json:"totalAmount"`
	Description string  `json:"description"`
	CallbackURL string  `json:"callbackUrl"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"redirectUrl"`
}

type verifyResponse struct {
	Status string `json:"status"`
}

// Checkout 创建网关支付会话，返回跳转地址和本次请求的引用号
func (c *Client) Checkout(ctx context.Context, amount float64, description string) (*CheckoutResult, error) {
	reference := uuid.NewString()

	payload, err := json.Marshal(&checkoutRequest{
		Reference:   reference,
		Amount:      amount,
		Description: description,
		CallbackURL: c.cfg.CallbackURL,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/checkouts", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway checkout failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway error: %s", string(body))
	}

	var result checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}

	return &CheckoutResult{
		CheckoutURL: result.CheckoutURL,
		Reference:   reference,
	}, nil
}

// Verify 查询引用号对应的支付结果
func (c *Client) Verify(ctx context.Context, reference string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/payments/"+reference, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway verify failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gateway error: %s", string(body))
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode verify response: %w", err)
	}

	return result.Status, nil
}

package fivesim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNoFreePhones возвращается, когда у провайдера нет свободных номеров.
	ErrNoFreePhones = errors.New("fivesim: no free phones")
	// ErrOrderNotFound возвращается провайдером по неизвестной активации.
	ErrOrderNotFound = errors.New("fivesim: order not found")
)

// Client — клиент API 5sim для аренды временных номеров.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Activation описывает арендованный номер.
type Activation struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	Operator  string    `json:"operator"`
	Product   string    `json:"product"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	Expires   time.Time `json:"expires"`
	SMS       []SMS     `json:"sms"`
	CreatedAt time.Time `json:"created_at"`
	Country   string    `json:"country"`
}

// SMS — полученное на арендованный номер сообщение.
type SMS struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile — аккаунт реселлера у провайдера.
type Profile struct {
	ID      int64   `json:"id"`
	Email   string  `json:"email"`
	Balance float64 `json:"balance"`
	Rating  float64 `json:"rating"`
}

// Prices возвращает прайс провайдера, опционально по стране и продукту.
func (c *Client) Prices(ctx context.Context, country, product string) (json.RawMessage, error) {
	params := url.Values{}
	if country != "" {
		params.Set("country", country)
	}
	if product != "" {
		params.Set("product", product)
	}
	path := "/guest/prices"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var raw json.RawMessage
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// BuyActivation арендует номер под конкретный сервис.
func (c *Client) BuyActivation(ctx context.Context, country, operator, product string) (*Activation, error) {
	if operator == "" {
		operator = "any"
	}
	path := fmt.Sprintf("/user/buy/activation/%s/%s/%s",
		url.PathEscape(country), url.PathEscape(operator), url.PathEscape(product))

	var activation Activation
	if err := c.get(ctx, path, &activation); err != nil {
		return nil, err
	}
	return &activation, nil
}

// Check возвращает текущее состояние активации вместе с полученными SMS.
func (c *Client) Check(ctx context.Context, id int64) (*Activation, error) {
	var activation Activation
	if err := c.get(ctx, fmt.Sprintf("/user/check/%d", id), &activation); err != nil {
		return nil, err
	}
	return &activation, nil
}

// Finish помечает активацию успешно завершённой.
func (c *Client) Finish(ctx context.Context, id int64) (*Activation, error) {
	var activation Activation
	if err := c.get(ctx, fmt.Sprintf("/user/finish/%d", id), &activation); err != nil {
		return nil, err
	}
	return &activation, nil
}

// Cancel отменяет активацию, средства возвращаются на баланс реселлера.
func (c *Client) Cancel(ctx context.Context, id int64) (*Activation, error) {
	var activation Activation
	if err := c.get(ctx, fmt.Sprintf("/user/cancel/%d", id), &activation); err != nil {
		return nil, err
	}
	return &activation, nil
}

// ListActivations возвращает историю активаций аккаунта.
func (c *Client) ListActivations(ctx context.Context) ([]Activation, error) {
	var result struct {
		Data []Activation `json:"Data"`
	}
	if err := c.get(ctx, "/user/orders?category=activation", &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetProfile возвращает баланс и данные аккаунта реселлера.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "/user/profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// get выполняет GET запрос и декодирует JSON ответ.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("fivesim: baseURL не задан")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// 5sim отвечает текстом на часть ошибок
	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(body))
		switch {
		case strings.Contains(msg, "no free phones"):
			return ErrNoFreePhones
		case strings.Contains(msg, "order not found"):
			return ErrOrderNotFound
		}
		return fmt.Errorf("fivesim: код ответа %d: %s", resp.StatusCode, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("fivesim: декодирование ответа %w", err)
	}
	return nil
}

package mderp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wbhub/internal/app/pkg/logger"
	"wbhub/internal/app/pkg/wildcode"
)

// PayloadOrder is one order line in the ERP document. Count is always 1:
// every marketplace order carries exactly one item.
type PayloadOrder struct {
	OrderID int64 `json:"order_id"`
	Price   int64 `json:"price"`
	NMID    int64 `json:"nm_id"`
	Count   int   `json:"count"`
}

// PayloadSupply groups order lines under one supply id.
type PayloadSupply struct {
	SupplyID string         `json:"supply_id"`
	Orders   []PayloadOrder `json:"orders"`
}

// PayloadProduct groups supplies under one normalized article.
type PayloadProduct struct {
	WildCode string          `json:"wild_code"`
	Supplies []PayloadSupply `json:"supplies"`
}

// PayloadAccount is one seller account's slice of the document.
type PayloadAccount struct {
	Account string           `json:"account"`
	INN     string           `json:"inn"`
	Data    []PayloadProduct `json:"data"`
}

// Payload is the full ERP document body.
type Payload struct {
	Accounts []PayloadAccount `json:"accounts"`
}

// Result carries the outcome of an ERP send. ERP failures are data for the
// operation record, not errors for the caller: a failed send must not undo
// an already-committed marketplace move.
type Result struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message,omitempty"`
}

// OrderLine is the flat input the module aggregates into the payload shape.
type OrderLine struct {
	OrderID  int64
	Article  string
	Account  string
	SupplyID string
	Price    int64
	NMID     int64
}

// ERPModule posts supply documents into the 1C ERP.
type ERPModule struct {
	host       string
	user       string
	password   string
	inns       map[string]string
	httpClient *http.Client
	log        logger.Logger
}

// NewERPModule creates the ERP module. inns maps account name to tax id.
func NewERPModule(host, user, password string, inns map[string]string, timeout time.Duration, log logger.Logger) *ERPModule {
	return &ERPModule{
		host:     host,
		user:     user,
		password: password,
		inns:     inns,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// BuildPayload aggregates flat order lines into the nested document:
// account → normalized article → supply → orders.
func (m *ERPModule) BuildPayload(lines []OrderLine) Payload {
	type supplyKey struct {
		account, wild, supply string
	}

	byAccount := make(map[string][]string)            // account → wild order of appearance
	byProduct := make(map[string]map[string][]string) // account → wild → supply order
	bySupply := make(map[supplyKey][]PayloadOrder)

	for _, line := range lines {
		wild := wildcode.Normalize(line.Article)
		key := supplyKey{account: line.Account, wild: wild, supply: line.SupplyID}

		if _, ok := byProduct[line.Account]; !ok {
			byProduct[line.Account] = make(map[string][]string)
			byAccount[line.Account] = nil
		}
		if _, ok := byProduct[line.Account][wild]; !ok {
			byAccount[line.Account] = append(byAccount[line.Account], wild)
		}
		if _, ok := bySupply[key]; !ok {
			byProduct[line.Account][wild] = append(byProduct[line.Account][wild], line.SupplyID)
		}
		bySupply[key] = append(bySupply[key], PayloadOrder{
			OrderID: line.OrderID,
			Price:   line.Price,
			NMID:    line.NMID,
			Count:   1,
		})
	}

	payload := Payload{}
	for account, wilds := range byAccount {
		pa := PayloadAccount{Account: account, INN: m.inns[account]}
		for _, wild := range wilds {
			product := PayloadProduct{WildCode: wild}
			for _, supplyID := range byProduct[account][wild] {
				product.Supplies = append(product.Supplies, PayloadSupply{
					SupplyID: supplyID,
					Orders:   bySupply[supplyKey{account: account, wild: wild, supply: supplyID}],
				})
			}
			pa.Data = append(pa.Data, product)
		}
		payload.Accounts = append(payload.Accounts, pa)
	}
	return payload
}

// Send posts the document and interprets the response envelope: the ERP
// answers HTTP 200 even on failure, the real verdict is status_code in the
// body. Transport and envelope failures come back as a failed Result, never
// as an error.
func (m *ERPModule) Send(ctx context.Context, payload Payload) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("encode payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.host, bytes.NewReader(body))
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(m.user, m.password)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.log.Errorf(ctx, "erp request failed: %v", err)
		return Result{Success: false, Message: fmt.Sprintf("erp request: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Success: false, StatusCode: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err)}
	}

	var envelope struct {
		StatusCode int    `json:"status_code"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Result{Success: false, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}

	if envelope.StatusCode != http.StatusOK {
		m.log.Warnf(ctx, "erp rejected document: status_code=%d message=%s", envelope.StatusCode, envelope.Message)
		return Result{Success: false, StatusCode: envelope.StatusCode, Message: envelope.Message}
	}

	return Result{Success: true, StatusCode: envelope.StatusCode}
}

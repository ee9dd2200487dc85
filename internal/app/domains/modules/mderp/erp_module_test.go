package mderp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wbhub/internal/app/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModule(host string) *ERPModule {
	return NewERPModule(host, "erpuser", "erppass", map[string]string{"acc1": "7701234567"}, 5*time.Second, logger.Nop())
}

func TestBuildPayloadGroupsByAccountArticleSupply(t *testing.T) {
	m := newModule("")

	payload := m.BuildPayload([]OrderLine{
		{OrderID: 1, Article: "wild5/M", Account: "acc1", SupplyID: "S1", Price: 100, NMID: 11},
		{OrderID: 2, Article: "wild5", Account: "acc1", SupplyID: "S1", Price: 100, NMID: 11},
		{OrderID: 3, Article: "wild5", Account: "acc1", SupplyID: "S2", Price: 100, NMID: 11},
		{OrderID: 4, Article: "wild9", Account: "acc1", SupplyID: "S1", Price: 200, NMID: 12},
	})

	require.Len(t, payload.Accounts, 1)
	acc := payload.Accounts[0]
	assert.Equal(t, "acc1", acc.Account)
	assert.Equal(t, "7701234567", acc.INN)

	// article variants normalize into one wild code
	require.Len(t, acc.Data, 2)
	assert.Equal(t, "wild5", acc.Data[0].WildCode)
	assert.Equal(t, "wild9", acc.Data[1].WildCode)

	require.Len(t, acc.Data[0].Supplies, 2)
	assert.Equal(t, "S1", acc.Data[0].Supplies[0].SupplyID)
	require.Len(t, acc.Data[0].Supplies[0].Orders, 2)
	assert.Equal(t, "S2", acc.Data[0].Supplies[1].SupplyID)

	for _, product := range acc.Data {
		for _, supply := range product.Supplies {
			for _, o := range supply.Orders {
				assert.Equal(t, 1, o.Count)
			}
		}
	}
}

func TestSendUsesBasicAuthAndEnvelope(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status_code": 200})
	}))
	defer server.Close()

	result := newModule(server.URL).Send(context.Background(), Payload{})

	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "erpuser", gotUser)
	assert.Equal(t, "erppass", gotPass)
}

func TestSendEnvelopeFailureIsDataNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the ERP reports failures inside an HTTP 200 response
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status_code": 500, "message": "document rejected"})
	}))
	defer server.Close()

	result := newModule(server.URL).Send(context.Background(), Payload{})

	assert.False(t, result.Success)
	assert.Equal(t, 500, result.StatusCode)
	assert.Equal(t, "document rejected", result.Message)
}

func TestSendTransportFailureIsDataNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused

	result := newModule(server.URL).Send(context.Background(), Payload{})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

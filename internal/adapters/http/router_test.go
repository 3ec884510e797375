package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ticketrail/settlement/internal/adapters/memory"
	"github.com/ticketrail/settlement/internal/adapters/security"
	"github.com/ticketrail/settlement/internal/application"
	"github.com/ticketrail/settlement/internal/contracts"
	"github.com/ticketrail/settlement/internal/domain"
)

var (
	testOwner  = common.HexToAddress("0xBBBB000000000000000000000000000000000001")
	testBuyer  = common.HexToAddress("0xBBBB000000000000000000000000000000000002")
	testSeller = common.HexToAddress("0xBBBB000000000000000000000000000000000003")
)

func newTestServer(t *testing.T) (*httptest.Server, *security.PrincipalVerifier) {
	t.Helper()
	repos := memory.NewRepositories()
	svc := application.NewService(application.Dependencies{
		Config:     application.Config{Owner: testOwner},
		Escrow:     repos.Escrow,
		Pool:       repos.Pool,
		Authz:      repos.Authz,
		Fees:       repos.Fees,
		Outbox:     repos.Outbox,
		Registry:   memory.NewStaticTicketRegistry(),
		Revocation: memory.NewStaticRevocationAuthority(),
		Transferor: memory.NewLedgerTransferor(),
		Locks:      memory.NewKeyedLocker(),
	})
	verifier, err := security.NewPrincipalVerifier("test-secret-32-bytes-long-enough")
	if err != nil {
		t.Fatalf("NewPrincipalVerifier: %v", err)
	}
	server := httptest.NewServer(NewRouter(NewHandler(svc), verifier))
	t.Cleanup(server.Close)
	return server, verifier
}

func bearerFor(t *testing.T, verifier *security.PrincipalVerifier, principal common.Address) string {
	t.Helper()
	token, err := verifier.Issue(principal, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func postJSON(t *testing.T, url, bearer string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func testOrderRequest() contracts.OrderRequest {
	return contracts.OrderRequest{
		TicketCommit: "0x0202020202020202020202020202020202020202020202020202020202020202",
		Seller:       testSeller.Hex(),
		Buyer:        testBuyer.Hex(),
		Price:        5_000,
		Expiry:       time.Now().Add(24 * time.Hour).Unix(),
	}
}

func TestHealthEndpoints(t *testing.T) {
	server, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d", path, resp.StatusCode)
		}
	}
}

func TestComputeSaleIDNeedsNoAuth(t *testing.T) {
	server, _ := newTestServer(t)
	resp := postJSON(t, server.URL+"/v1/orders/sale-id", "", testOrderRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body struct {
		Data contracts.SaleIDResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := domain.ParseHash(body.Data.SaleID); err != nil {
		t.Fatalf("response carries invalid sale id %q", body.Data.SaleID)
	}
}

func TestFundRequiresBearerToken(t *testing.T) {
	server, _ := newTestServer(t)
	resp := postJSON(t, server.URL+"/v1/orders/fund", "", contracts.FundRequest{Order: testOrderRequest(), SentValue: 5_000})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
	resp = postJSON(t, server.URL+"/v1/orders/fund", "Bearer not-a-token", contracts.FundRequest{Order: testOrderRequest(), SentValue: 5_000})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d, want 401", resp.StatusCode)
	}
}

func TestFundAndGetEscrowRecord(t *testing.T) {
	server, verifier := newTestServer(t)
	bearer := bearerFor(t, verifier, testBuyer)
	orderReq := testOrderRequest()

	resp := postJSON(t, server.URL+"/v1/orders/fund", bearer, contracts.FundRequest{Order: orderReq, SentValue: orderReq.Price})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("fund status %d, want 201", resp.StatusCode)
	}
	var funded struct {
		Data contracts.EscrowRecordResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&funded); err != nil {
		t.Fatalf("decode fund response: %v", err)
	}
	if funded.Data.Status != domain.EscrowStatusFunded {
		t.Fatalf("status %q, want funded", funded.Data.Status)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/v1/orders/"+funded.Data.SaleID, nil)
	req.Header.Set("Authorization", bearer)
	getResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", getResp.StatusCode)
	}
}

func TestFundErrorMapping(t *testing.T) {
	server, verifier := newTestServer(t)
	bearer := bearerFor(t, verifier, testBuyer)
	orderReq := testOrderRequest()

	resp := postJSON(t, server.URL+"/v1/orders/fund", bearer, contracts.FundRequest{Order: orderReq, SentValue: orderReq.Price - 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong amount: status %d, want 400", resp.StatusCode)
	}
	var body contracts.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "wrong_amount" {
		t.Fatalf("error code %q, want wrong_amount", body.Error.Code)
	}

	// Funding twice maps the duplicate onto 409.
	resp = postJSON(t, server.URL+"/v1/orders/fund", bearer, contracts.FundRequest{Order: orderReq, SentValue: orderReq.Price})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first fund: status %d", resp.StatusCode)
	}
	resp = postJSON(t, server.URL+"/v1/orders/fund", bearer, contracts.FundRequest{Order: orderReq, SentValue: orderReq.Price})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate fund: status %d, want 409", resp.StatusCode)
	}
}

func TestSettleForbiddenWithoutConfirmerRole(t *testing.T) {
	server, verifier := newTestServer(t)
	bearer := bearerFor(t, verifier, testBuyer)
	orderReq := testOrderRequest()

	resp := postJSON(t, server.URL+"/v1/orders/fund", bearer, contracts.FundRequest{Order: orderReq, SentValue: orderReq.Price})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("fund: status %d", resp.StatusCode)
	}
	resp = postJSON(t, server.URL+"/v1/orders/settle", bearer, contracts.SettleRequest{Order: orderReq})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("settle without role: status %d, want 403", resp.StatusCode)
	}
}

func TestAdminFeesRoundTrip(t *testing.T) {
	server, verifier := newTestServer(t)
	ownerBearer := bearerFor(t, verifier, testOwner)

	raw, _ := json.Marshal(contracts.SetFeesRequest{ObolBps: 250, ProtectBps: 100, FoundationAddress: "0xBBBB000000000000000000000000000000000009"})
	req, _ := http.NewRequest(http.MethodPut, server.URL+"/v1/admin/fees", bytes.NewReader(raw))
	req.Header.Set("Authorization", ownerBearer)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put fees: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put fees status %d", resp.StatusCode)
	}

	getReq, _ := http.NewRequest(http.MethodGet, server.URL+"/v1/admin/fees", nil)
	getReq.Header.Set("Authorization", ownerBearer)
	getResp, err := http.DefaultClient.Do(getReq)
	if err != nil {
		t.Fatalf("get fees: %v", err)
	}
	defer getResp.Body.Close()
	var body struct {
		Data contracts.FeeConfigResponse `json:"data"`
	}
	if err := json.NewDecoder(getResp.Body).Decode(&body); err != nil {
		t.Fatalf("decode fees: %v", err)
	}
	if body.Data.ObolBps != 250 || body.Data.ProtectBps != 100 {
		t.Fatalf("unexpected fees %+v", body.Data)
	}
}

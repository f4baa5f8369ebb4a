package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/blocto/solana-go-sdk/types"

	"spl-token-forge/internal/minting"
	"spl-token-forge/internal/minting/stub"
	"spl-token-forge/internal/wallet"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeTestKeypair(t *testing.T) string {
	t.Helper()

	account := types.NewAccount()
	ints := make([]int, len(account.PrivateKey))
	for i, b := range account.PrivateKey {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		t.Fatalf("marshal keypair: %v", err)
	}

	path := filepath.Join(t.TempDir(), "id.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write keypair: %v", err)
	}
	return path
}

func newTestServer(t *testing.T, client minting.ProgramClient) *Server {
	t.Helper()

	connector := wallet.NewConnector(writeTestKeypair(t), wallet.WithLogger(quietLogger()))
	pipeline := minting.NewPipeline(client, minting.WithLogger(quietLogger()))
	return NewServer(connector, pipeline, WithLogger(quietLogger()))
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validFields() map[string]string {
	return map[string]string{
		"name":        "Test Token",
		"symbol":      "TEST",
		"decimals":    "9",
		"totalSupply": "1000",
	}
}

func pngData() []byte {
	header := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, make([]byte, 56)...)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, stub.NewProgramClient())

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleCreate(t *testing.T) {
	client := stub.NewProgramClient()
	server := newTestServer(t, client)

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, multipartRequest(t, "/api/tokens", validFields()))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp createResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Mint != client.MintAddress {
		t.Errorf("mint = %s", resp.Mint)
	}
	if resp.RequestID == "" {
		t.Error("requestId should be set")
	}
	if len(client.Calls) != 3 {
		t.Errorf("expected 3 program calls, got %d", len(client.Calls))
	}
}

func TestHandleCreate_ValidationFailure(t *testing.T) {
	client := stub.NewProgramClient()
	server := newTestServer(t, client)

	fields := validFields()
	fields["decimals"] = "12"
	fields["symbol"] = ""

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, multipartRequest(t, "/api/tokens", fields))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.FieldErrors["decimals"] == "" || resp.FieldErrors["symbol"] == "" {
		t.Errorf("fieldErrors = %v", resp.FieldErrors)
	}
	if len(client.Calls) != 0 {
		t.Error("invalid submission must not reach the program")
	}
}

func TestHandleCreate_BothImageSources(t *testing.T) {
	server := newTestServer(t, stub.NewProgramClient())

	fields := validFields()
	fields["imageUrl"] = "https://example.com/logo.png"

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, multipartRequest(t, "/api/tokens", fields,
		formFile{field: "image", name: "logo.png", data: pngData()}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleCreate_UnsupportedImage(t *testing.T) {
	server := newTestServer(t, stub.NewProgramClient())

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, multipartRequest(t, "/api/tokens", validFields(),
		formFile{field: "image", name: "notes.txt", data: []byte("plain text")}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleCreate_MissingWallet(t *testing.T) {
	connector := wallet.NewConnector(
		filepath.Join(t.TempDir(), "absent.json"),
		wallet.WithLogger(quietLogger()))
	pipeline := minting.NewPipeline(stub.NewProgramClient(), minting.WithLogger(quietLogger()))
	server := NewServer(connector, pipeline, WithLogger(quietLogger()))

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, multipartRequest(t, "/api/tokens", validFields()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleCreate_PipelineFailure(t *testing.T) {
	client := stub.NewProgramClient()
	client.CreateMintErr = errors.New("rpc: node unavailable")
	server := newTestServer(t, client)

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, multipartRequest(t, "/api/tokens", validFields()))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

// blockingClient parks the first create call until released.
type blockingClient struct {
	*stub.ProgramClient
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingClient) CreateMint(ctx context.Context, signer *wallet.Handle, mintAuthority, freezeAuthority string, decimals uint8) (string, error) {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.ProgramClient.CreateMint(ctx, signer, mintAuthority, freezeAuthority, decimals)
}

func TestHandleCreate_SingleFlight(t *testing.T) {
	client := &blockingClient{
		ProgramClient: stub.NewProgramClient(),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	server := newTestServer(t, client)
	mux := server.Routes()

	firstDone := make(chan int, 1)
	go func() {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, multipartRequest(t, "/api/tokens", validFields()))
		firstDone <- rec.Code
	}()

	<-client.entered

	// Second submission while the first is in flight.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, "/api/tokens", validFields()))
	if rec.Code != http.StatusConflict {
		t.Errorf("concurrent submission status = %d, want 409", rec.Code)
	}

	close(client.release)
	if code := <-firstDone; code != http.StatusCreated {
		t.Errorf("first submission status = %d, want 201", code)
	}

	// The guard is released after completion.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, "/api/tokens", validFields()))
	if rec.Code != http.StatusCreated {
		t.Errorf("follow-up submission status = %d, want 201", rec.Code)
	}
}

func TestHandlePreview(t *testing.T) {
	server := newTestServer(t, stub.NewProgramClient())

	fields := validFields()
	fields["totalSupply"] = "1000000"

	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, multipartRequest(t, "/api/tokens/preview", fields))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["totalSupply"] != "1,000,000" {
		t.Errorf("totalSupply = %q, want grouped", resp["totalSupply"])
	}
	if resp["image"] == "" {
		t.Error("image should fall back to the placeholder")
	}
}

func TestHandlePreview_IncompleteForm(t *testing.T) {
	server := newTestServer(t, stub.NewProgramClient())

	// Preview never validates; partial input renders as typed.
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, multipartRequest(t, "/api/tokens/preview",
		map[string]string{"name": "Partial", "totalSupply": "soon"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["totalSupply"] != "soon" {
		t.Errorf("totalSupply = %q", resp["totalSupply"])
	}
}

func TestHandleStatus(t *testing.T) {
	server := newTestServer(t, stub.NewProgramClient())
	mux := server.Routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, "/api/tokens", validFields()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.TokensCreated != 1 {
		t.Errorf("tokens_created = %d", resp.TokensCreated)
	}
	if resp.Wallet == "" {
		t.Error("wallet should be connected after a creation")
	}
}

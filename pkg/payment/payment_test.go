package payment

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	paymentmodel "paydash/app/models/payment"
	"paydash/app/models/terminal"
	"paydash/pkg/payment/factory"
	"paydash/pkg/payment/pay10"
	"paydash/pkg/payment/types"
	"paydash/pkg/payment/utils"
)

const key = "0123456789abcdef0123456789abcdef"

type fakeFinder map[string]*terminal.Terminal

func (f fakeFinder) FirstByPayloadID(_ context.Context, id string) (*terminal.Terminal, error) {
	if t, ok := f[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type memoryStore struct {
	records map[string]*paymentmodel.Payment
	err     error
}

func (s *memoryStore) Upsert(_ context.Context, p *paymentmodel.Payment) error {
	if s.err != nil {
		return s.err
	}
	if s.records == nil {
		s.records = map[string]*paymentmodel.Payment{}
	}
	s.records[p.OrderID] = p
	return nil
}

type recordingReplayer struct {
	pushed []*paymentmodel.Payment
}

func (r *recordingReplayer) PushRecord(_ context.Context, p *paymentmodel.Payment) error {
	r.pushed = append(r.pushed, p)
	return nil
}

// countingFinder 记录是否被调用
type countingFinder struct{ calls int }

func (c *countingFinder) FirstByPayloadID(context.Context, string) (*terminal.Terminal, error) {
	c.calls++
	return nil, gorm.ErrRecordNotFound
}

func newProcessor(t *testing.T, store RecordStore, opts ...Option) *Processor {
	t.Helper()
	ids, err := utils.NewIDGenerator(1)
	require.NoError(t, err)
	resolver := NewTerminalResolver(fakeFinder{
		"P1":     {Gateway: "pay10", Name: "main", PayloadID: "P1", EncryptionKey: key},
		"NO_KEY": {Gateway: "pay10", Name: "empty", PayloadID: "NO_KEY"},
	})
	return NewProcessor(factory.NewRegistry(), resolver, store, ids, opts...)
}

func pay10Callback(t *testing.T, plain, payID string) *types.Callback {
	t.Helper()
	enc, err := pay10.Encrypt(plain, key)
	require.NoError(t, err)
	return &types.Callback{Form: url.Values{"ENCDATA": {enc}, "PAY_ID": {payID}}}
}

func TestProcessPay10Success(t *testing.T) {
	store := &memoryStore{}
	received := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := newProcessor(t, store, WithClock(func() time.Time { return received }))

	res, err := p.Process(context.Background(), types.GatewayPay10,
		pay10Callback(t, "ORDER_ID=ORD_1~RESPONSE_CODE=000~status=pending", "P1"))
	require.NoError(t, err)

	assert.Equal(t, types.StatusSuccess, res.Verdict.Status)
	assert.Equal(t, "ORD_1", res.RecordID)

	rec := store.records["ORD_1"]
	require.NotNil(t, rec)
	assert.Equal(t, "success", rec.Status)
	assert.Equal(t, received, rec.ReceivedAt)
	assert.Equal(t, "ORDER_ID=ORD_1~RESPONSE_CODE=000~status=pending", rec.DecryptedRaw)
	// 元数据覆盖同名厂商字段
	assert.Equal(t, "success", rec.Document["status"])
	assert.Equal(t, "pay10", rec.Document["gateway"])
	assert.Equal(t, "000", rec.Document["RESPONSE_CODE"])
	assert.NotEmpty(t, rec.Document["encdata"])
}

func TestProcessFallbackOrderID(t *testing.T) {
	store := &memoryStore{}
	p := newProcessor(t, store)

	res, err := p.Process(context.Background(), types.GatewayUnlimit,
		&types.Callback{Body: []byte(`{"payment_data":{"status":"DECLINED"}}`)})
	require.NoError(t, err)

	assert.Empty(t, res.Verdict.OrderID)
	assert.True(t, strings.HasPrefix(res.RecordID, "unlimit_"))
	rec := store.records[res.RecordID]
	require.NotNil(t, rec)
	assert.True(t, rec.OrderIDGenerated)
	assert.Nil(t, rec.Document["orderId"])
	assert.Equal(t, "failure", rec.Status)
}

func TestProcessUnknownCredentialSkipsDecrypt(t *testing.T) {
	finder := &countingFinder{}
	ids, _ := utils.NewIDGenerator(1)
	store := &memoryStore{}
	p := NewProcessor(factory.NewRegistry(), NewTerminalResolver(finder), store, ids)

	_, err := p.Process(context.Background(), types.GatewayPay10,
		&types.Callback{Form: url.Values{"ENCDATA": {"garbage"}, "PAY_ID": {"P404"}}})

	var notFound *types.CredentialNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "P404", notFound.ID)
	assert.Equal(t, 1, finder.calls)
	assert.Empty(t, store.records)
}

func TestProcessEmptyKeyIsNotFound(t *testing.T) {
	p := newProcessor(t, &memoryStore{})
	_, err := p.Process(context.Background(), types.GatewayPay10,
		&types.Callback{Form: url.Values{"ENCDATA": {"abc"}, "PAY_ID": {"NO_KEY"}}})
	assert.ErrorIs(t, err, types.ErrCredentialNotFound)
}

func TestProcessDecryptFailureShortCircuits(t *testing.T) {
	store := &memoryStore{}
	p := newProcessor(t, store)

	_, err := p.Process(context.Background(), types.GatewayPay10,
		&types.Callback{Form: url.Values{"ENCDATA": {"%%%not-base64"}, "PAY_ID": {"P1"}}})
	assert.ErrorIs(t, err, types.ErrDecrypt)
	assert.Empty(t, store.records)
}

func TestProcessPersistFailureIsQueued(t *testing.T) {
	replayer := &recordingReplayer{}
	p := newProcessor(t, &memoryStore{err: errors.New("db down")}, WithReplayer(replayer))

	res, err := p.Process(context.Background(), types.GatewayPay10,
		pay10Callback(t, `{"ORDER_ID":"ORD_2","STATUS":"Captured"}`, "P1"))
	require.NoError(t, err)

	assert.EqualError(t, res.PersistErr, "db down")
	assert.True(t, res.Queued)
	require.Len(t, replayer.pushed, 1)
	assert.Equal(t, "ORD_2", replayer.pushed[0].OrderID)
}

func TestProcessUnsupportedGateway(t *testing.T) {
	p := newProcessor(t, &memoryStore{})
	_, err := p.Process(context.Background(), types.GatewaySabPaisa, &types.Callback{})
	assert.ErrorIs(t, err, types.ErrUnsupportedGateway)
}

func TestResolveOrigin(t *testing.T) {
	r := httptest.NewRequest("POST", "http://dash.internal/api/pay10/callback", nil)
	assert.Equal(t, "https://pay.example.com", ResolveOrigin("https://pay.example.com/", r))
	assert.Equal(t, "http://dash.internal", ResolveOrigin("", r))

	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("X-Forwarded-Host", "pay.example.org")
	assert.Equal(t, "https://pay.example.org", ResolveOrigin("", r))

	tlsReq := httptest.NewRequest("POST", "https://secure.internal/", nil)
	tlsReq.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://secure.internal", ResolveOrigin("", tlsReq))
}

func TestResultURL(t *testing.T) {
	assert.Equal(t, "https://a.test/payment/result?status=success&orderId=ORD_1",
		ResultURL("https://a.test", types.StatusSuccess, "ORD_1"))
	assert.Equal(t, "https://a.test/payment/result?status=failure",
		ResultURL("https://a.test", types.StatusFailure, ""))
	assert.Equal(t, "https://a.test/payment/result?status=failure&orderId=A+B%26C",
		ResultURL("https://a.test", types.StatusFailure, "A B&C"))
}

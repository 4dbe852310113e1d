package unlimit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRequestForm(t *testing.T) {
	_, err := TokenRequest{}.Form()
	assert.ErrorIs(t, err, ErrMissingGrantField)

	_, err = TokenRequest{GrantType: GrantPassword, TerminalCode: "T"}.Form()
	assert.ErrorIs(t, err, ErrMissingGrantField)

	_, err = TokenRequest{GrantType: GrantRefreshToken}.Form()
	assert.ErrorIs(t, err, ErrMissingGrantField)

	_, err = TokenRequest{GrantType: "client_credentials"}.Form()
	assert.ErrorIs(t, err, ErrUnsupportedGrant)

	form, err := TokenRequest{GrantType: GrantRefreshToken, RefreshToken: "R"}.Form()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"grant_type": "refresh_token", "refresh_token": "R"}, form)
}

func TestExchangeTokenRelaysUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "T1", r.PostForm.Get("terminal_code"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"name":"INVALID_CREDENTIALS"}`))
	}))
	defer srv.Close()

	reply, err := NewClient(srv.Client()).ExchangeToken(context.Background(), srv.URL+"/api/", TokenRequest{
		GrantType: GrantPassword, TerminalCode: "T1", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, reply.Status)
	assert.False(t, reply.OK())
	assert.Equal(t, map[string]interface{}{"name": "INVALID_CREDENTIALS"}, reply.Body)
}

func TestAccessToken(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		token   string
		errType interface{}
	}{
		{"snake case", 200, `{"access_token":"abc"}`, "abc", nil},
		{"camel case", 200, `{"accessToken":"def"}`, "def", nil},
		{"missing", 200, `{}`, "", &TokenError{}},
		{"upstream failure", 503, `oops`, "", &UpstreamError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			token, err := NewClient(nil).AccessToken(context.Background(), srv.URL, "T", "P")
			switch tt.errType.(type) {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, tt.token, token)
			case *TokenError:
				assert.ErrorIs(t, err, ErrMissingToken)
			case *UpstreamError:
				var upstream *UpstreamError
				require.ErrorAs(t, err, &upstream)
				assert.Equal(t, 503, upstream.Status)
				assert.Equal(t, map[string]interface{}{}, upstream.Body)
			}
		})
	}
}

func TestCreatePayment(t *testing.T) {
	var received PaymentPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &received))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"redirect_url":"https://pay.test/r"}`))
	}))
	defer srv.Close()

	payload := NewPaymentPayload(PaymentOptions{
		Amount: "12.34", Currency: "INR", CustomerEmail: "customer@email.com", RequestName: "Demo request from UI",
	}, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	reply, err := NewClient(nil).CreatePayment(context.Background(), srv.URL, "tok", payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, reply.Status)
	assert.Equal(t, "https://pay.test/r", reply.Body.(map[string]interface{})["redirect_url"])

	assert.Equal(t, "BANKCARD", received.PaymentMethod)
	assert.Equal(t, "12.34", received.PaymentData.Amount)
	assert.Equal(t, `UI Order ("Demo request from UI")`, received.MerchantOrder.Description)
	assert.Equal(t, "2024-01-02T03:04:05.000Z", received.Request.Time)
	assert.NotEqual(t, received.Request.ID, received.MerchantOrder.ID)
}

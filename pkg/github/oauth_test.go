package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestDeviceCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/device/code" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("client_id"); got != "client123" {
			t.Errorf("client_id = %q", got)
		}
		fmt.Fprint(w, `{"device_code":"dc","user_code":"ABCD-1234","verification_uri":"https://github.com/login/device","expires_in":900,"interval":5}`)
	}))
	defer srv.Close()

	c := NewOAuthClient("client123", WithOAuthBaseURL(srv.URL))
	resp, err := c.RequestDeviceCode(context.Background())
	if err != nil {
		t.Fatalf("RequestDeviceCode: %v", err)
	}
	if resp.UserCode != "ABCD-1234" || resp.DeviceCode != "dc" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCheckDeviceTokenError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"expired_token","error_description":"the device code has expired"}`)
	}))
	defer srv.Close()

	c := NewOAuthClient("", WithOAuthBaseURL(srv.URL))
	_, err := c.checkDeviceToken(context.Background(), "dc")
	if err == nil {
		t.Fatal("expected error for expired device code")
	}
}

func TestDefaultClientIDFallback(t *testing.T) {
	c := NewOAuthClient("")
	if c.clientID != DefaultClientID {
		t.Errorf("clientID = %q, want default", c.clientID)
	}
}

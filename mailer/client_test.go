package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("EMAILJS_API_BASE_URL", baseURL)
	t.Setenv("EMAILJS_SERVICE_ID", "service_test")
	t.Setenv("EMAILJS_TEMPLATE_ID", "template_test")
	t.Setenv("EMAILJS_PUBLIC_KEY", "pk_test")
	t.Setenv("EMAILJS_PRIVATE_KEY", "sk_test")

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Setenv("EMAILJS_SERVICE_ID", "")
	t.Setenv("EMAILJS_TEMPLATE_ID", "")
	t.Setenv("EMAILJS_PUBLIC_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Fatal("missing credentials should fail client construction")
	}
}

func TestSendPostsTemplateParams(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1.0/email/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	err := client.Send(context.Background(), TemplateParams{
		"to_email":  "officer@forest.gov.in",
		"report_id": "RPT-0CBE7F",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got.ServiceId != "service_test" || got.TemplateId != "template_test" || got.UserId != "pk_test" {
		t.Fatalf("credentials not carried in payload: %+v", got)
	}
	if got.TemplateParams["to_email"] != "officer@forest.gov.in" {
		t.Fatal("template params not carried in payload")
	}
}

func TestSendSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid template", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	err := client.Send(context.Background(), TemplateParams{"to_email": "x@y.z"})
	if err == nil {
		t.Fatal("non-2xx response should surface as an error")
	}
}

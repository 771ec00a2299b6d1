package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/speakerkit/httpclient"
)

type speakerDoc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(httpclient.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestClient_Get(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/speakers/s1" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		json.NewEncoder(w).Encode(speakerDoc{ID: "s1", Name: "Ada"})
	})

	var got speakerDoc
	if err := c.Get(context.Background(), "/speakers/s1", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("got %+v", got)
	}
}

func TestClient_PostWithQuery(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if r.URL.Query().Get("wait") != "true" || r.URL.Query().Get("limit") != "10" {
			t.Errorf("query = %v", r.URL.Query())
		}
		var in speakerDoc
		json.NewDecoder(r.Body).Decode(&in)
		in.ID = "generated"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(in)
	})

	var got speakerDoc
	err := c.Post(context.Background(), "/speakers", speakerDoc{Name: "Grace"}, &got, Query("wait", "true"), Query("limit", "10"))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if got.ID != "generated" || got.Name != "Grace" {
		t.Errorf("got %+v", got)
	}
}

func TestClient_PutDeleteDiscard(t *testing.T) {
	var methods []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		json.NewEncoder(w).Encode(map[string]string{"method": r.Method})
	})

	if err := c.Put(context.Background(), "/collections/c", map[string]int{"size": 256}, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var del map[string]string
	if err := c.Delete(context.Background(), "/collections/c", &del); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if del["method"] != http.MethodDelete || len(methods) != 2 || methods[0] != http.MethodPut {
		t.Errorf("methods = %v, delete reply = %v", methods, del)
	}
}

func TestClient_ErrorBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"speaker not found"}}`))
	})

	var got speakerDoc
	err := c.Get(context.Background(), "/speakers/missing", &got)
	if !httpclient.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if !ErrorBody(err, &body) || body.Error.Message != "speaker not found" {
		t.Errorf("error body = %+v", body)
	}
	if ErrorBody(nil, &body) {
		t.Error("nil error has no body")
	}
}

func TestClient_DecodeFailure(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	var got speakerDoc
	if err := c.Get(context.Background(), "/", &got); err == nil {
		t.Fatal("expected decode error")
	}
}

package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"
)

func TestCreateTweetWithImageWithoutStorage(t *testing.T) {
	srv := newServer(t, nil)
	session := signUp(t, srv, "alice")

	// Plain tweets need no storage and must keep working.
	resp := postJSON(t, srv, "/api/v1/tweets", session.Tokens.AccessToken, map[string]string{"content": "hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("json tweet: status %d", resp.StatusCode)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("content", "with a picture"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := form.CreateFormFile("image", "pic.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("binary")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/tweets", &body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+session.Tokens.AccessToken)

	upload, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("post multipart tweet: %v", err)
	}
	defer upload.Body.Close()
	if upload.StatusCode != http.StatusBadGateway {
		t.Fatalf("tweet with image and no storage: status %d, want %d", upload.StatusCode, http.StatusBadGateway)
	}
}

package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/gateway"
	"github.com/labelwise/labelwise/internal/llmcall"
	extractprompt "github.com/labelwise/labelwise/internal/prompts/extract"
	"github.com/labelwise/labelwise/internal/providers"
)

type fakeRecorder struct {
	calls []*llmcall.Call
}

func (f *fakeRecorder) Record(_ context.Context, call *llmcall.Call) error {
	f.calls = append(f.calls, call)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fakeImage = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10} // JPEG magic

func imageDataURI() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(fakeImage)
}

func goodExtraction() json.RawMessage {
	return json.RawMessage(`{
		"product_name": "Salted Peanuts",
		"ingredients": "peanuts, salt",
		"raw_text": "SALTED PEANUTS. Ingredients: peanuts, salt. Sodium 150mg.",
		"serving_size_g": 28,
		"calories": 170,
		"fat_g": 14,
		"sugar_g": 1,
		"sodium_mg": 150
	}`)
}

func TestDecodeImage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []byte
		wantErr bool
	}{
		{
			name:    "data URI",
			payload: imageDataURI(),
			want:    fakeImage,
		},
		{
			name:    "bare base64",
			payload: base64.StdEncoding.EncodeToString(fakeImage),
			want:    fakeImage,
		},
		{
			name:    "empty",
			payload: "",
			wantErr: true,
		},
		{
			name:    "data URI without base64 marker",
			payload: "data:image/jpeg,rawdata",
			wantErr: true,
		},
		{
			name:    "invalid base64",
			payload: "!!!not-base64!!!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeImage(tt.payload)
			if tt.wantErr {
				if !errors.Is(err, ErrBadImage) {
					t.Errorf("error = %v, want ErrBadImage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeImage() error = %v", err)
			}
			if string(got) != string(tt.want) {
				t.Errorf("decoded bytes mismatch")
			}
		})
	}
}

func TestService_ExtractLabel(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = goodExtraction()
	recorder := &fakeRecorder{}
	svc := NewService(mock, recorder, testLogger())

	label, err := svc.ExtractLabel(context.Background(), auth.Identity{Subject: "user-1"}, imageDataURI())
	if err != nil {
		t.Fatalf("ExtractLabel() error = %v", err)
	}

	if label.ProductName != "Salted Peanuts" {
		t.Errorf("product_name = %q, want Salted Peanuts", label.ProductName)
	}
	if label.SodiumMg == nil || *label.SodiumMg != 150 {
		t.Errorf("sodium_mg = %v, want 150", label.SodiumMg)
	}

	sent := mock.LastRequest()
	if sent == nil {
		t.Fatal("no request captured")
	}
	if len(sent.Messages) != 2 || len(sent.Messages[1].Images) != 1 {
		t.Error("expected one image attached to the user message")
	}
	if string(sent.Messages[1].Images[0]) != string(fakeImage) {
		t.Error("image bytes not passed through")
	}

	if len(recorder.calls) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(recorder.calls))
	}
	call := recorder.calls[0]
	if call.Owner != "user-1" {
		t.Errorf("call owner = %q, want user-1", call.Owner)
	}
	if call.PromptKey != extractprompt.UserPromptKey {
		t.Errorf("call prompt key = %q, want %q", call.PromptKey, extractprompt.UserPromptKey)
	}
	if call.PromptCID != extractprompt.UserPromptHash() {
		t.Errorf("call prompt cid = %q, want the registered prompt hash", call.PromptCID)
	}
}

func TestService_ExtractLabel_NullNutrition(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"product_name": "Mystery Snack",
		"ingredients": "",
		"raw_text": "MYSTERY SNACK",
		"serving_size_g": null,
		"calories": null,
		"fat_g": null,
		"sugar_g": null,
		"sodium_mg": null
	}`)
	svc := NewService(mock, nil, testLogger())

	label, err := svc.ExtractLabel(context.Background(), auth.Identity{Subject: "user-1"}, imageDataURI())
	if err != nil {
		t.Fatalf("ExtractLabel() error = %v", err)
	}

	if label.SugarG != nil {
		t.Errorf("sugar_g = %v, want nil for null", *label.SugarG)
	}
	if label.ProductName != "Mystery Snack" {
		t.Errorf("product_name = %q", label.ProductName)
	}
}

func TestService_ExtractLabel_NegativeNutritionRejected(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"product_name": "Bad Data",
		"ingredients": "",
		"raw_text": "",
		"serving_size_g": null,
		"calories": -170,
		"fat_g": null,
		"sugar_g": null,
		"sodium_mg": null
	}`)
	svc := NewService(mock, nil, testLogger())

	_, err := svc.ExtractLabel(context.Background(), auth.Identity{Subject: "user-1"}, imageDataURI())
	if !errors.Is(err, gateway.ErrInvalidModelOutput) {
		t.Errorf("error = %v, want ErrInvalidModelOutput for negative calories", err)
	}
	if mock.RequestCount() != 2 {
		t.Errorf("request count = %d, want 2 (one retry)", mock.RequestCount())
	}
}

func TestService_ExtractLabel_AnonymousCaller(t *testing.T) {
	mock := providers.NewMockClient()
	svc := NewService(mock, nil, testLogger())

	_, err := svc.ExtractLabel(context.Background(), auth.Identity{}, imageDataURI())
	if !errors.Is(err, auth.ErrNoIdentity) {
		t.Errorf("error = %v, want ErrNoIdentity", err)
	}
}

func TestService_ExtractLabel_BadImageNoRequest(t *testing.T) {
	mock := providers.NewMockClient()
	svc := NewService(mock, nil, testLogger())

	_, err := svc.ExtractLabel(context.Background(), auth.Identity{Subject: "user-1"}, "%%%")
	if !errors.Is(err, ErrBadImage) {
		t.Errorf("error = %v, want ErrBadImage", err)
	}
	if mock.RequestCount() != 0 {
		t.Errorf("request count = %d, want 0", mock.RequestCount())
	}
}

func TestService_ExtractLabel_TransportFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true
	svc := NewService(mock, nil, testLogger())

	_, err := svc.ExtractLabel(context.Background(), auth.Identity{Subject: "user-1"}, imageDataURI())
	if !errors.Is(err, gateway.ErrInferenceUnavailable) {
		t.Errorf("error = %v, want ErrInferenceUnavailable", err)
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestEmitPairsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	Error("checkout failed", errors.New("boom"), "customer_id", 7)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}

	if line["message"] != "checkout failed" {
		t.Errorf("message = %v", line["message"])
	}
	if line["error"] != "boom" {
		t.Errorf("error = %v", line["error"])
	}
	if line["customer_id"] != float64(7) {
		t.Errorf("customer_id = %v", line["customer_id"])
	}
}

func TestEmitUnpairedValue(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	Warn("odd args", "dangling")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if line["detail"] != "dangling" {
		t.Errorf("detail = %v", line["detail"])
	}
}

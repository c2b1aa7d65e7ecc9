package protocol

import (
	"encoding/json"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frame, err := Encode(TypeMoveDetective, MoveDetectivePayload{Color: "red", StationID: 42, TransportType: "taxi"})
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if env.Type != TypeMoveDetective {
		t.Errorf("expected type %s, got %s", TypeMoveDetective, env.Type)
	}

	var payload MoveDetectivePayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("unexpected payload decode error: %v", err)
	}
	if payload.Color != "red" || payload.StationID != 42 || payload.TransportType != "taxi" {
		t.Errorf("round-trip mismatch: %+v", payload)
	}
}

func TestDecodeMissingType(t *testing.T) {
	_, err := Decode([]byte(`{"payload":{}}`))
	if err == nil {
		t.Error("expected an error decoding an envelope with no type")
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	if err == nil {
		t.Error("expected an error decoding invalid JSON")
	}
}

func TestEncodeNilPayload(t *testing.T) {
	frame, err := Encode(TypeSubmitMove, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Type != TypeSubmitMove {
		t.Errorf("expected type %s, got %s", TypeSubmitMove, env.Type)
	}
	if len(env.Payload) != 0 {
		t.Errorf("expected empty payload, got %s", env.Payload)
	}
}

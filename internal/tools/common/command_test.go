package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestRunCIWritesResultDocument(t *testing.T) {
	var out bytes.Buffer
	inv := Invocation{Tool: "seed", Command: "dry-run", CI: true, Out: &out}

	details, err := Run(inv, func(ctx context.Context) ([]string, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatal("expected a deadline on the action context")
		}
		return []string{"would insert 8 sample products"}, nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("unexpected details: %v", details)
	}

	var got CIResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode ci result: %v", err)
	}
	if !got.OK || got.Tool != "seed" || got.Command != "dry-run" || got.Error != "" {
		t.Fatalf("unexpected ci result: %+v", got)
	}
}

func TestRunCIReportsFailure(t *testing.T) {
	var out bytes.Buffer
	inv := Invocation{Tool: "migrate", Command: "up", CI: true, Out: &out}
	boom := errors.New("memory backend has no schema")

	_, err := Run(inv, func(context.Context) ([]string, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected action error, got %v", err)
	}
	var got CIResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode ci result: %v", err)
	}
	if got.OK || got.Error != boom.Error() {
		t.Fatalf("unexpected ci result: %+v", got)
	}
	if inv.Title() != "migrate up" {
		t.Fatalf("unexpected title %q", inv.Title())
	}
}

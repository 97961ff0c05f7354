package reqctx

import (
	"context"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ctx := WithPostID(WithRID(context.Background(), "abc"), 42)
	if got := RID(ctx); got != "abc" {
		t.Fatalf("rid=%q", got)
	}
	if got := PostID(ctx); got != 42 {
		t.Fatalf("post=%d", got)
	}
	if RID(context.Background()) != "" || PostID(context.Background()) != 0 {
		t.Fatalf("empty context should yield zero values")
	}
}

package reqctx

import "context"

type ctxKey string

const (
	keyRID    ctxKey = "localaid_rid"
	keyPostID ctxKey = "localaid_post_id"
)

// WithRID stores the request correlation id for workflow logs.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithPostID stores the post a request is acting on.
func WithPostID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, keyPostID, id)
}

func PostID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyPostID).(uint64)
	return v
}
